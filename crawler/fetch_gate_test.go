package crawler

import (
	"context"
	"sync"
	"time"

	check "gopkg.in/check.v1"
)

var _ = check.Suite(new(FetchGateTestSuite))

type FetchGateTestSuite struct{}

func (s *FetchGateTestSuite) TestDefaultCapacity(c *check.C) {
	c.Assert(NewFetchGate(0).Capacity(), check.Equals, DefaultMaxInFlight)
	c.Assert(NewFetchGate(-3).Capacity(), check.Equals, DefaultMaxInFlight)
	c.Assert(NewFetchGate(2).Capacity(), check.Equals, 2)
}

func (s *FetchGateTestSuite) TestAcquireRelease(c *check.C) {
	gate := NewFetchGate(2)

	c.Assert(gate.Acquire(context.TODO()), check.IsNil)
	c.Assert(gate.Acquire(context.TODO()), check.IsNil)
	c.Assert(gate.InFlight(), check.Equals, 2)

	gate.Release()
	c.Assert(gate.InFlight(), check.Equals, 1)
	gate.Release()
	c.Assert(gate.InFlight(), check.Equals, 0)
	c.Assert(gate.Peak(), check.Equals, 2)
}

func (s *FetchGateTestSuite) TestAcquireBlocksUntilContextDone(c *check.C) {
	gate := NewFetchGate(1)
	c.Assert(gate.Acquire(context.TODO()), check.IsNil)

	ctx, cancelFn := context.WithTimeout(context.TODO(), 20*time.Millisecond)
	defer cancelFn()

	err := gate.Acquire(ctx)
	c.Assert(err, check.Equals, context.DeadlineExceeded)
	c.Assert(gate.InFlight(), check.Equals, 1)
}

func (s *FetchGateTestSuite) TestPeakNeverExceedsCapacity(c *check.C) {
	const capacity = 4
	gate := NewFetchGate(capacity)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := gate.Acquire(context.TODO()); err != nil {
				return
			}
			defer gate.Release()

			<-time.After(2 * time.Millisecond)
		}()
	}
	wg.Wait()

	c.Assert(gate.Peak() <= capacity, check.Equals, true)
	c.Assert(gate.Peak() > 0, check.Equals, true)
	c.Assert(gate.InFlight(), check.Equals, 0)
}
