package renderer

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"testing"
)

// collect runs the pool and gathers its results by row
func collect(t *testing.T, pool *WorkerPool, rows []int) map[int][]byte {
	t.Helper()
	results := make(map[int][]byte)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for result := range pool.Results() {
			if _, dup := results[result.Row]; dup {
				t.Errorf("Row %d delivered twice", result.Row)
			}
			results[result.Row] = result.Pixels
		}
	}()
	if err := pool.Run(rows); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	<-done
	return results
}

func randomRow(row int, random *rand.Rand) []byte {
	return binary.LittleEndian.AppendUint64(nil, random.Uint64())
}

func TestWorkerPool_DeliversEveryRow(t *testing.T) {
	rows := make([]int, 50)
	for i := range rows {
		rows[i] = i
	}
	pool := NewWorkerPool(4, 1, func(row int, _ *rand.Rand) []byte {
		return []byte{byte(row)}
	})

	results := collect(t, pool, rows)
	if len(results) != len(rows) {
		t.Fatalf("Expected %d rows, got %d", len(rows), len(results))
	}
	for row, pixels := range results {
		if pixels[0] != byte(row) {
			t.Errorf("Row %d carries pixels of row %d", row, pixels[0])
		}
	}
}

func TestWorkerPool_RowsIndependentOfWorkerCount(t *testing.T) {
	rows := []int{5, 3, 9, 0, 1, 7}
	single := collect(t, NewWorkerPool(1, 42, randomRow), rows)
	many := collect(t, NewWorkerPool(6, 42, randomRow), rows)

	for _, row := range rows {
		if !bytes.Equal(single[row], many[row]) {
			t.Errorf("Row %d differs between worker counts", row)
		}
	}
	if bytes.Equal(single[0], single[1]) {
		t.Error("Different rows should draw different random streams")
	}

	other := collect(t, NewWorkerPool(1, 43, randomRow), rows)
	if bytes.Equal(single[5], other[5]) {
		t.Error("Different seeds should draw different random streams")
	}
}

func TestWorkerPool_NoRows(t *testing.T) {
	results := collect(t, NewWorkerPool(3, 0, randomRow), nil)
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}

func TestNewWorkerPool_DefaultsToCPUCount(t *testing.T) {
	pool := NewWorkerPool(0, 0, randomRow)
	if pool.GetNumWorkers() < 1 {
		t.Errorf("Expected at least one worker, got %d", pool.GetNumWorkers())
	}
}
