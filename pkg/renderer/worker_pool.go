package renderer

import (
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// RowTask asks a worker to render one image row
type RowTask struct {
	Row int
}

// RowResult carries a finished row
type RowResult struct {
	Row    int
	Pixels []byte
}

// RowFunc renders one row with the worker's random source
type RowFunc func(row int, random *rand.Rand) []byte

// WorkerPool renders rows in parallel.
// Each worker owns one random source, reseeded from (seed, row) before every row so
// the pixels of a row do not depend on which worker rendered it.
type WorkerPool struct {
	taskQueue   chan RowTask
	resultQueue chan RowResult
	numWorkers  int
	seed        int64
	render      RowFunc
}

// NewWorkerPool creates a worker pool with the specified number of workers
func NewWorkerPool(numWorkers int, seed int64, render RowFunc) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	return &WorkerPool{
		taskQueue:   make(chan RowTask, numWorkers*2),
		resultQueue: make(chan RowResult, numWorkers),
		numWorkers:  numWorkers,
		seed:        seed,
		render:      render,
	}
}

// Run renders rows and closes Results once every row has been delivered.
// Results must be drained concurrently.
func (wp *WorkerPool) Run(rows []int) error {
	var workers errgroup.Group
	for i := 0; i < wp.numWorkers; i++ {
		workers.Go(wp.work)
	}

	for _, row := range rows {
		wp.taskQueue <- RowTask{Row: row}
	}
	close(wp.taskQueue)

	err := workers.Wait()
	close(wp.resultQueue)
	return err
}

// Results delivers rows in completion order
func (wp *WorkerPool) Results() <-chan RowResult {
	return wp.resultQueue
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

func (wp *WorkerPool) work() error {
	random := rand.New(rand.NewSource(0))
	for task := range wp.taskQueue {
		random.Seed(RowSeed(wp.seed, task.Row))
		wp.resultQueue <- RowResult{Row: task.Row, Pixels: wp.render(task.Row, random)}
	}
	return nil
}

// RowSeed mixes the render seed and a row index into an independent stream seed
func RowSeed(seed int64, row int) int64 {
	z := uint64(seed) + uint64(row+1)*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return int64(z ^ (z >> 31))
}
