package pipeline

import "context"

// Source feeds payloads into a Pipeline.
type Source interface {
	// Next advances to the next payload. It returns false once the source
	// is exhausted or has failed; Error tells the two apart.
	Next(context.Context) bool

	// Payload returns the payload Next advanced to.
	Payload() Payload

	// Error returns the error that stopped the source, if any.
	Error() error
}

// Payload is the unit of work that flows through a Pipeline.
type Payload interface {
	// MarkAsProcessed is called exactly once per payload, either after the
	// sink consumed it or when a stage dropped it. Pooled payloads return
	// themselves to their pool here.
	MarkAsProcessed()
}

// Processor transforms payloads for a single stage.
type Processor interface {
	// Process returns the payload to forward to the next stage. A nil
	// payload drops it; an error aborts the whole pipeline.
	Process(context.Context, Payload) (Payload, error)
}

// ProcessorFunc adapts an ordinary function to the Processor interface.
type ProcessorFunc func(context.Context, Payload) (Payload, error)

// Process calls f(ctx, p).
func (f ProcessorFunc) Process(ctx context.Context, p Payload) (Payload, error) {
	return f(ctx, p)
}

// StageRunner drives a Processor for one stage of a Pipeline.
type StageRunner interface {
	// Run moves payloads from params.Input() to params.Output(). It blocks
	// until the input is closed, ctx is done or processing failed.
	Run(context.Context, StageParams)
}

// StageParams gives a StageRunner access to its position and channels.
type StageParams interface {
	// StageIndex is the zero-based position of the stage.
	StageIndex() int

	// Input carries payloads from the previous stage or the source.
	Input() <-chan Payload

	// Output carries payloads to the next stage or the sink.
	Output() chan<- Payload

	// Error reports failures to the pipeline.
	Error() chan<- error
}

// Sink receives the payloads that made it through every stage.
type Sink interface {
	// Consume is called from a single goroutine, once per payload.
	Consume(context.Context, Payload) error
}
