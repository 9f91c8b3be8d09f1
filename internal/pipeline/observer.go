package pipeline

// Observer is notified as stages progress. Implementations render progress
// and must not block.
type Observer interface {
	StageStarted(stage string)
	OpFinished(stage string, op OpResult)
	StageFinished(res StageResult)
}

type NopObserver struct{}

func (NopObserver) StageStarted(string)         {}
func (NopObserver) OpFinished(string, OpResult) {}
func (NopObserver) StageFinished(StageResult)   {}
