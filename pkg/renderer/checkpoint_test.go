package renderer

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// checkpointBytes writes a 2x3 checkpoint holding the given rows in order
func checkpointBytes(t *testing.T, rows map[int][]byte, order ...int) []byte {
	t.Helper()
	var buf bytes.Buffer
	cp, err := NewCheckpoint(&buf, 2, 3)
	if err != nil {
		t.Fatalf("NewCheckpoint failed: %v", err)
	}
	for _, row := range order {
		if err := cp.WriteRow(row, rows[row]); err != nil {
			t.Fatalf("WriteRow(%d) failed: %v", row, err)
		}
	}
	return buf.Bytes()
}

var testRows = map[int][]byte{
	0: {1, 2, 3, 4, 5, 6},
	1: {'L', '\n', ' ', 'L', '9', '\n'}, // payload bytes that look like record syntax
	2: {250, 251, 252, 253, 254, 255},
}

func TestCheckpoint_Format(t *testing.T) {
	data := checkpointBytes(t, testRows, 2)
	expected := "2 3\nL2 " + string(testRows[2]) + "\n"
	if string(data) != expected {
		t.Errorf("Expected %q, got %q", expected, string(data))
	}
}

func TestCheckpoint_RoundTripAnyOrder(t *testing.T) {
	data := checkpointBytes(t, testRows, 2, 0, 1)

	rows, err := ReadCheckpoint(bytes.NewReader(data), 2, 3, false)
	if err != nil {
		t.Fatalf("ReadCheckpoint failed: %v", err)
	}
	for row, expected := range testRows {
		if !bytes.Equal(rows[row], expected) {
			t.Errorf("Row %d: expected %v, got %v", row, expected, rows[row])
		}
	}
}

func TestReadCheckpoint_MissingRowsAreNil(t *testing.T) {
	data := checkpointBytes(t, testRows, 1)

	rows, err := ReadCheckpoint(bytes.NewReader(data), 2, 3, false)
	if err != nil {
		t.Fatalf("ReadCheckpoint failed: %v", err)
	}
	if rows[0] != nil || rows[2] != nil {
		t.Errorf("Expected only row 1, got %v", rows)
	}
	if !bytes.Equal(rows[1], testRows[1]) {
		t.Errorf("Row 1 mismatch: %v", rows[1])
	}
}

func TestReadCheckpoint_HeaderOnly(t *testing.T) {
	rows, err := ReadCheckpoint(strings.NewReader("2 3\n"), 2, 3, false)
	if err != nil {
		t.Fatalf("ReadCheckpoint failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected 3 row slots, got %d", len(rows))
	}
	for i, row := range rows {
		if row != nil {
			t.Errorf("Row %d should be missing", i)
		}
	}
}

func TestReadCheckpoint_Corrupt(t *testing.T) {
	valid := checkpointBytes(t, testRows, 0)

	tests := []struct {
		name  string
		trail string
	}{
		{"truncated payload", "L2 \x01\x02"},
		{"missing L", "X2 \x01\x02\x03\x04\x05\x06\n"},
		{"missing newline", "L2 \x01\x02\x03\x04\x05\x06X"},
		{"row out of range", "L7 \x01\x02\x03\x04\x05\x06\n"},
		{"bad row number", "Lx \x01\x02\x03\x04\x05\x06\n"},
		{"truncated row number", "L1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := append(append([]byte{}, valid...), tt.trail...)

			_, err := ReadCheckpoint(bytes.NewReader(data), 2, 3, false)
			if !errors.Is(err, ErrCorruptCheckpoint) {
				t.Errorf("Expected ErrCorruptCheckpoint, got %v", err)
			}

			rows, err := ReadCheckpoint(bytes.NewReader(data), 2, 3, true)
			if err != nil {
				t.Fatalf("Best-effort recovery failed: %v", err)
			}
			if !bytes.Equal(rows[0], testRows[0]) {
				t.Errorf("Expected row 0 to survive, got %v", rows[0])
			}
			if rows[1] != nil || rows[2] != nil {
				t.Errorf("Expected no rows after the corrupt record, got %v", rows)
			}
		})
	}
}

func TestReadCheckpoint_DimensionMismatch(t *testing.T) {
	data := checkpointBytes(t, testRows, 0)

	for _, recoverCorrupt := range []bool{false, true} {
		_, err := ReadCheckpoint(bytes.NewReader(data), 3, 3, recoverCorrupt)
		if !errors.Is(err, ErrDimensionMismatch) {
			t.Errorf("recoverCorrupt=%v: expected ErrDimensionMismatch, got %v", recoverCorrupt, err)
		}
	}
}

func TestReadCheckpoint_BadHeader(t *testing.T) {
	for _, header := range []string{"", "2", "two 3\n", "2 3"} {
		_, err := ReadCheckpoint(strings.NewReader(header), 2, 3, true)
		if !errors.Is(err, ErrCorruptCheckpoint) {
			t.Errorf("Header %q: expected ErrCorruptCheckpoint, got %v", header, err)
		}
	}
}

func TestCheckpoint_WriteRowRejectsWrongLength(t *testing.T) {
	cp, err := NewCheckpoint(io.Discard, 2, 3)
	if err != nil {
		t.Fatalf("NewCheckpoint failed: %v", err)
	}
	if err := cp.WriteRow(0, []byte{1, 2, 3}); err == nil {
		t.Error("Expected an error for a short row")
	}
}

func TestCreateCheckpoint_PicksFreeName(t *testing.T) {
	output := filepath.Join(t.TempDir(), "render.png")

	first, err := CreateCheckpoint(output, 2, 3)
	if err != nil {
		t.Fatalf("CreateCheckpoint failed: %v", err)
	}
	defer first.Close()
	second, err := CreateCheckpoint(output, 2, 3)
	if err != nil {
		t.Fatalf("CreateCheckpoint failed: %v", err)
	}
	defer second.Close()

	if first.Path() != output+".0.part" || second.Path() != output+".1.part" {
		t.Errorf("Unexpected paths %q, %q", first.Path(), second.Path())
	}

	if err := first.WriteRow(1, testRows[1]); err != nil {
		t.Fatalf("WriteRow failed: %v", err)
	}
	data, err := os.ReadFile(first.Path())
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.Equal(data, checkpointBytes(t, testRows, 1)) {
		t.Errorf("Unexpected file contents %q", data)
	}
}

func TestCreateCheckpoint_MissingDirectory(t *testing.T) {
	output := filepath.Join(t.TempDir(), "nope", "render.png")
	if _, err := CreateCheckpoint(output, 2, 3); err == nil {
		t.Error("Expected an error for a missing directory")
	}
}
