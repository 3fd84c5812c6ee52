package pipeline

import (
	"context"
	"fmt"
	"sync"
)

// processOne runs proc on payloadIn and forwards the result. It returns false
// when the stage must stop: the processor failed or ctx is done.
func processOne(
	ctx context.Context, proc Processor, params StageParams, payloadIn Payload,
) bool {

	payloadOut, err := proc.Process(ctx, payloadIn)
	if err != nil {
		mayEmitError(
			fmt.Errorf("pipeline stage %d: %w", params.StageIndex(), err),
			params.Error(),
		)

		return false
	}

	// A nil output means the processor dropped the payload.
	if payloadOut == nil {
		payloadIn.MarkAsProcessed()

		return true
	}

	select {
	case <-ctx.Done():
		return false
	case params.Output() <- payloadOut:
		return true
	}
}

type fifo struct {
	proc Processor
}

// NewFIFO returns a StageRunner that processes payloads one at a time, in
// arrival order.
func NewFIFO(proc Processor) StageRunner {
	return fifo{proc: proc}
}

// Run implements StageRunner.
func (r fifo) Run(ctx context.Context, params StageParams) {
	for {
		select {
		case <-ctx.Done():
			return
		case payloadIn, ok := <-params.Input():
			if !ok || !processOne(ctx, r.proc, params, payloadIn) {
				return
			}
		}
	}
}

type fixedWorkerPool struct {
	workers []StageRunner
}

// NewFixedWorkerPool returns a StageRunner made of numOfWorkers FIFO runners
// sharing the stage channels, so up to numOfWorkers payloads are processed
// concurrently and output order is not preserved.
func NewFixedWorkerPool(proc Processor, numOfWorkers int) StageRunner {
	if numOfWorkers <= 0 {
		panic("FixedWorkerPool: numOfWorkers must be > 0")
	}

	workers := make([]StageRunner, numOfWorkers)
	for i := range workers {
		workers[i] = NewFIFO(proc)
	}

	return fixedWorkerPool{workers: workers}
}

// Run implements StageRunner. It returns once every worker has exited.
func (r fixedWorkerPool) Run(ctx context.Context, params StageParams) {
	var wg sync.WaitGroup

	wg.Add(len(r.workers))
	for _, w := range r.workers {
		go func(w StageRunner) {
			defer wg.Done()
			w.Run(ctx, params)
		}(w)
	}

	wg.Wait()
}

type dynamicWorkerPool struct {
	proc   Processor
	tokens chan struct{}
}

// NewDynamicWorkerPool returns a StageRunner that processes every payload in
// a goroutine of its own, with at most maxNumOfWorkers goroutines alive at a
// time. The runner may be reused across executions.
func NewDynamicWorkerPool(proc Processor, maxNumOfWorkers int) StageRunner {
	if maxNumOfWorkers <= 0 {
		panic("DynamicWorkerPool: maxNumOfWorkers must be > 0")
	}

	tokens := make(chan struct{}, maxNumOfWorkers)
	for i := 0; i < maxNumOfWorkers; i++ {
		tokens <- struct{}{}
	}

	return dynamicWorkerPool{proc: proc, tokens: tokens}
}

// Run implements StageRunner. It returns only after every goroutine it
// started has finished.
func (r dynamicWorkerPool) Run(ctx context.Context, params StageParams) {
	r.dispatch(ctx, params)

	// Collecting every token waits for the in-flight workers; putting them
	// back readies the pool for the next execution.
	for i := 0; i < cap(r.tokens); i++ {
		<-r.tokens
	}
	for i := 0; i < cap(r.tokens); i++ {
		r.tokens <- struct{}{}
	}
}

func (r dynamicWorkerPool) dispatch(ctx context.Context, params StageParams) {
	for {
		var (
			payloadIn Payload
			ok        bool
		)

		select {
		case <-ctx.Done():
			return
		case payloadIn, ok = <-params.Input():
			if !ok {
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case token := <-r.tokens:
			go func(p Payload) {
				defer func() { r.tokens <- token }()
				_ = processOne(ctx, r.proc, params, p)
			}(payloadIn)
		}
	}
}
