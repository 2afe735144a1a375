package plink

// Stage names one step of the lift-and-filter pipeline.
type Stage string

const (
	StageMapToBed Stage = "map->bed"
	StageLift     Stage = "lift"
	StageBedToMap Stage = "bed->map"
	StageDat      Stage = "dat"
	StagePed      Stage = "ped"
	StageCleanup  Stage = "cleanup"
)

// Observer receives progress notifications. StageStarted always precedes the
// matching StageFinished, even when the stage fails reading its input.
// LinesProcessed is called from worker goroutines and, when DAT and PED are
// filtered concurrently, Stage* calls may interleave, so implementations must
// be safe for concurrent use.
type Observer interface {
	StageStarted(stage Stage, input string)
	LinesProcessed(stage Stage, n int)
	StageFinished(stage Stage, err error)
}

// NopObserver discards every notification.
type NopObserver struct{}

func (NopObserver) StageStarted(Stage, string) {}
func (NopObserver) LinesProcessed(Stage, int)  {}
func (NopObserver) StageFinished(Stage, error) {}
