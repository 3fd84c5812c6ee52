package pipeline_test

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	check "gopkg.in/check.v1"

	"github.com/mycok/wikigraph/pipeline"
)

var _ = check.Suite(new(StageRunnerTestSuite))

type StageRunnerTestSuite struct{}

func (s *StageRunnerTestSuite) TestFIFOPreservesOrder(c *check.C) {
	stages := make([]pipeline.StageRunner, 5)
	for i := range stages {
		stages[i] = pipeline.NewFIFO(passThrough())
	}

	src := newSliceSource(4)
	sink := new(recordingSink)

	err := pipeline.New(stages...).Execute(context.TODO(), src, sink)
	c.Assert(err, check.IsNil)
	c.Assert(sink.received, check.DeepEquals, src.payloads)
	assertProcessed(c, src.payloads)
}

func (s *StageRunnerTestSuite) TestFIFOProcessorError(c *check.C) {
	failing := pipeline.ProcessorFunc(func(context.Context, pipeline.Payload) (pipeline.Payload, error) {
		return nil, errors.New("boom")
	})

	err := pipeline.New(pipeline.NewFIFO(failing)).Execute(context.TODO(), newSliceSource(2), new(recordingSink))
	c.Assert(err, check.ErrorMatches, "(?s).*pipeline stage 0: boom.*")
}

func (s *StageRunnerTestSuite) TestFixedWorkerPoolRunsConcurrently(c *check.C) {
	const workers = 6
	assertConcurrent(c, workers, workers, func(proc pipeline.Processor) pipeline.StageRunner {
		return pipeline.NewFixedWorkerPool(proc, workers)
	})
}

func (s *StageRunnerTestSuite) TestDynamicWorkerPoolRunsConcurrently(c *check.C) {
	const workers = 4
	assertConcurrent(c, workers, workers*3, func(proc pipeline.Processor) pipeline.StageRunner {
		return pipeline.NewDynamicWorkerPool(proc, workers)
	})
}

func (s *StageRunnerTestSuite) TestDynamicWorkerPoolBound(c *check.C) {
	const workers = 3
	var inFlight, peak int32

	proc := pipeline.ProcessorFunc(func(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
		n := atomic.AddInt32(&inFlight, 1)
		defer atomic.AddInt32(&inFlight, -1)
		for {
			cur := atomic.LoadInt32(&peak)
			if n <= cur || atomic.CompareAndSwapInt32(&peak, cur, n) {
				break
			}
		}
		<-time.After(2 * time.Millisecond)

		return p, nil
	})

	sink := new(recordingSink)
	err := pipeline.New(pipeline.NewDynamicWorkerPool(proc, workers)).Execute(context.TODO(), newSliceSource(20), sink)
	c.Assert(err, check.IsNil)
	c.Assert(sink.received, check.HasLen, 20)
	c.Assert(atomic.LoadInt32(&peak) <= workers, check.Equals, true)
}

func (s *StageRunnerTestSuite) TestDynamicWorkerPoolReuse(c *check.C) {
	var processed int32
	proc := pipeline.ProcessorFunc(func(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
		atomic.AddInt32(&processed, 1)

		return p, nil
	})

	// One runner serves consecutive executions.
	p := pipeline.New(pipeline.NewDynamicWorkerPool(proc, 2))
	for run := 0; run < 3; run++ {
		src := newSliceSource(4)
		sink := new(recordingSink)

		c.Assert(p.Execute(context.TODO(), src, sink), check.IsNil)
		c.Assert(sink.received, check.HasLen, 4)
		assertProcessed(c, src.payloads)
	}

	c.Assert(atomic.LoadInt32(&processed), check.Equals, int32(12))
}

// assertConcurrent checks that the runner built by newRunner lets workers
// processors block at the same time, then releases them and waits for all
// total payloads to be dropped.
func assertConcurrent(
	c *check.C, workers, total int,
	newRunner func(pipeline.Processor) pipeline.StageRunner,
) {
	arrived := make(chan struct{}, total)
	release := make(chan struct{})

	proc := pipeline.ProcessorFunc(func(context.Context, pipeline.Payload) (pipeline.Payload, error) {
		arrived <- struct{}{}
		<-release

		return nil, nil
	})

	src := newSliceSource(total)
	doneChan := make(chan error, 1)
	go func() {
		doneChan <- pipeline.New(newRunner(proc)).Execute(context.TODO(), src, nil)
	}()

	for i := 0; i < workers; i++ {
		select {
		case <-arrived:
		case <-time.After(10 * time.Second):
			c.Fatalf("timed out waiting for worker %d to start", i)
		}
	}
	close(release)

	select {
	case err := <-doneChan:
		c.Assert(err, check.IsNil)
	case <-time.After(10 * time.Second):
		c.Fatal("timed out waiting for pipeline to complete")
	}

	assertProcessed(c, src.payloads)
}

func passThrough() pipeline.Processor {
	return pipeline.ProcessorFunc(func(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
		return p, nil
	})
}
