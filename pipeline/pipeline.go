/*
	pipeline package provides a multi-stage, concurrent payload pipeline
	exposed through a synchronous API.

	A pipeline reads payloads from a Source, pushes them through zero or more
	stages and hands the results to a Sink. Each stage is a StageRunner:
		- NewFIFO processes payloads one at a time, in order.
		- NewFixedWorkerPool runs a fixed number of FIFO workers.
		- NewDynamicWorkerPool starts a goroutine per payload, bounded by a
		  token pool.

	Execute blocks until every payload emitted by the source has either
	reached the sink or been dropped by a stage, which makes a single
	execution usable as a fan-out / fan-in barrier.
*/

package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// Pipeline provide modular, multi-stage pipeline functionality. Each pipeline
// is built out of an input source, an output sink and zero or more
// processing stages / stage runners.
type Pipeline struct {
	stages []StageRunner
}

// New returns a pointer to a pipeline instance.
func New(stages ...StageRunner) *Pipeline {
	return &Pipeline{stages}
}

// Execute reads the contents of the specified source, sends them through the
// various stages of the pipeline and directs the results to the specified sink
// and returns back any errors that may have occurred.
//
// Calls to execute block until:
//   - all data from the source has been processed or discarded.
//   - an error is encountered from any of the pipeline components including
//     stage runners and their user defined processor functions.
//   - the supplied context is cancelled.
func (p *Pipeline) Execute(ctx context.Context, src Source, sink Sink) error {
	var wg sync.WaitGroup
	executionCtx, cancel := context.WithCancel(ctx)

	// The output of the i_th stage is the input of the i+1_th stage. One
	// extra channel connects the source to the sink when there are no stages.
	stageChans := make([]chan Payload, len(p.stages)+1)
	for i := 0; i < len(stageChans); i++ {
		stageChans[i] = make(chan Payload)
	}

	// Room for one error per stage plus the source and the sink.
	errChan := make(chan error, len(p.stages)+2)

	for i := 0; i < len(p.stages); i++ {
		wg.Add(1)

		go func(index int) {
			defer wg.Done()

			p.stages[index].Run(executionCtx, &stageParams{
				index: index,
				in:    stageChans[index],
				out:   stageChans[index+1],
				errs:  errChan,
			})

			// Run only returns once its input is closed, the context is
			// done or it failed. Either way the next stage gets no more data.
			close(stageChans[index+1])
		}(i)
	}

	wg.Add(2)

	go func() {
		defer wg.Done()

		sourceWorker(executionCtx, src, stageChans[0], errChan)

		// Closing the first channel starts the chain of closures that
		// shuts every stage down once it has drained its input.
		close(stageChans[0])
	}()

	go func() {
		defer wg.Done()

		sinkWorker(executionCtx, sink, stageChans[len(stageChans)-1], errChan)
	}()

	go func() {
		wg.Wait()

		close(errChan)
		cancel()
	}()

	var err error
	for stageErr := range errChan {
		err = multierror.Append(err, stageErr)

		// Any error tears the whole pipeline down.
		cancel()
	}

	return err
}

// sourceWorker retrieves payload instances from a source object and sends them
// to the input channel of the first stage.
func sourceWorker(
	ctx context.Context, src Source,
	outChan chan<- Payload, errChan chan<- error) {

	for src.Next(ctx) {
		p := src.Payload()

		select {
		case <-ctx.Done():
			return
		case outChan <- p:
		}
	}

	if err := src.Error(); err != nil {
		wrappedErr := fmt.Errorf("pipeline source: %w", err)
		mayEmitError(wrappedErr, errChan)
	}
}

func sinkWorker(
	ctx context.Context, sink Sink,
	inChan <-chan Payload, errChan chan<- error,
) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-inChan:
			if !ok {
				return
			}

			if err := sink.Consume(ctx, payload); err != nil {
				wrappedErr := fmt.Errorf("pipeline sink: %w", err)
				mayEmitError(wrappedErr, errChan)

				return
			}

			payload.MarkAsProcessed()
		}
	}
}

func mayEmitError(err error, errChan chan<- error) {
	select {
	case errChan <- err:
	default: // errChan is full of old errors and the new error is dropped.
	}
}
