package pipeline

var _ StageParams = (*stageParams)(nil)

// stageParams is the StageParams handed to the runner at position index.
type stageParams struct {
	index int
	in    <-chan Payload
	out   chan<- Payload
	errs  chan<- error
}

func (p *stageParams) StageIndex() int        { return p.index }
func (p *stageParams) Input() <-chan Payload  { return p.in }
func (p *stageParams) Output() chan<- Payload { return p.out }
func (p *stageParams) Error() chan<- error    { return p.errs }
