package domain

// ExecutionSink receives execution reports in emission order.
// Sinks are called synchronously from the sequencer goroutine.
type ExecutionSink interface {
	OnTrade(ev TradeEvent)
	OnUnexecuted(ev UnexecutedEvent)
}

// SnapshotStage tells a SnapshotObserver where in the admission cycle a snapshot was taken.
type SnapshotStage string

const (
	StageAdmitted SnapshotStage = "admitted" // after Admit, before Match
	StageMatched  SnapshotStage = "matched"  // after Match
)

// SnapshotObserver is notified with read-only book views (e.g. for display).
type SnapshotObserver func(stage SnapshotStage, snap BookSnapshot)
