// Package worker runs independent generation jobs on a bounded pool
package worker

import (
	"context"
	"sync"
)

// Task is a unit of work run by the pool
type Task[R any] func(ctx context.Context) R

// Pool runs tasks on a fixed number of goroutines and streams their outputs
// in completion order
type Pool[R any] struct {
	size   int
	ctx    context.Context
	cancel context.CancelFunc
	queue  chan Task[R]
	out    chan R
	wg     sync.WaitGroup
	once   sync.Once
}

// NewPool starts size workers bound to parent. Cancelling parent stops them
// after their current task.
func NewPool[R any](parent context.Context, size int) *Pool[R] {
	if size <= 0 {
		size = 1
	}
	ctx, cancel := context.WithCancel(parent)
	p := &Pool[R]{
		size:   size,
		ctx:    ctx,
		cancel: cancel,
		queue:  make(chan Task[R], size*2),
		out:    make(chan R, size*2),
	}

	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.run()
	}
	return p
}

// Size is the number of workers
func (p *Pool[R]) Size() int { return p.size }

func (p *Pool[R]) run() {
	defer p.wg.Done()
	for {
		var task Task[R]
		select {
		case <-p.ctx.Done():
			return
		case t, ok := <-p.queue:
			if !ok {
				return
			}
			task = t
		}

		out := task(p.ctx)
		select {
		case p.out <- out:
		case <-p.ctx.Done():
			return
		}
	}
}

// Go queues a task. It returns false once the pool is stopping.
func (p *Pool[R]) Go(task Task[R]) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case p.queue <- task:
		return true
	case <-p.ctx.Done():
		return false
	}
}

// Out streams task outputs. It closes after every worker has exited.
func (p *Pool[R]) Out() <-chan R { return p.out }

// Close stops accepting tasks; workers finish the queue and exit. Call it
// once, from the goroutine that queues tasks.
func (p *Pool[R]) Close() {
	close(p.queue)
	go func() {
		p.wg.Wait()
		p.finish()
	}()
}

// Drain closes the pool and collects every remaining output
func (p *Pool[R]) Drain() []R {
	p.Close()
	var outs []R
	for o := range p.out {
		outs = append(outs, o)
	}
	return outs
}

// Stop cancels in-flight tasks and waits for the workers
func (p *Pool[R]) Stop() {
	p.cancel()
	p.wg.Wait()
	p.finish()
}

func (p *Pool[R]) finish() {
	p.once.Do(func() {
		p.cancel()
		close(p.out)
	})
}
