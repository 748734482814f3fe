package meshing

import (
	"context"
	"sync"

	"github.com/dan0net/worldify/internal/profiling"
	"github.com/dan0net/worldify/internal/voxelworld"
)

// WorkerPool runs mesh extraction on a fixed number of goroutines: a
// buffered job queue, non-blocking Submit, and workers that exit on context
// cancellation. Results are multiplexed onto a single channel rather than a
// per-job channel, matching the voxelworld.Mesher contract the World
// Manager drains once per tick.
type WorkerPool struct {
	jobs    chan *voxelworld.MeshJob
	results chan voxelworld.MeshResult
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mesher  *Mesher
}

// NewWorkerPool starts `workers` goroutines pulling from a queue of
// `queueSize` pending jobs.
func NewWorkerPool(workers, queueSize int, classify Classifier) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())
	p := &WorkerPool{
		jobs:    make(chan *voxelworld.MeshJob, queueSize),
		results: make(chan voxelworld.MeshResult, queueSize),
		ctx:     ctx,
		cancel:  cancel,
		mesher:  NewMesher(classify),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit enqueues a mesh job, returning false if the queue is full.
func (p *WorkerPool) Submit(job voxelworld.MeshJob) bool {
	select {
	case p.jobs <- &job:
		return true
	default:
		return false
	}
}

// Results is the channel the World Manager drains each tick.
func (p *WorkerPool) Results() <-chan voxelworld.MeshResult {
	return p.results
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()
	for {
		select {
		case job := <-p.jobs:
			done := profiling.Track("meshing.WorkerPool.extract")
			mesh := p.mesher.Extract(*job)
			done()
			select {
			case p.results <- voxelworld.MeshResult{Coord: job.Coord, Mesh: mesh}:
			case <-p.ctx.Done():
				return
			}
		case <-p.ctx.Done():
			return
		}
	}
}

// Shutdown stops every worker and waits for them to exit.
func (p *WorkerPool) Shutdown() {
	p.cancel()
	p.wg.Wait()
}

// QueueLength reports the number of jobs currently buffered.
func (p *WorkerPool) QueueLength() int {
	return len(p.jobs)
}

var _ voxelworld.Mesher = (*WorkerPool)(nil)
