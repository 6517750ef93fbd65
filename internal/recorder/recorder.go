package recorder

import "BandSentinel/internal/model"

// Recorder persists an audit trail of backtest runs for later analysis.
type Recorder interface {
	RecordRun(run *model.RunSummary) error
	Close() error
}

// New returns a SQLite recorder for path, or a NoopRecorder when path is empty.
func New(path string) (Recorder, error) {
	if path == "" {
		return NewNoopRecorder(), nil
	}
	return NewSQLiteRecorder(path)
}
