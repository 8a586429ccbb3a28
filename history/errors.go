package history

import "errors"

var (
	// ErrDuplicateID is returned when a stroke or checkpoint id is reused.
	ErrDuplicateID = errors.New("history: duplicate id")

	// ErrInvalidStroke is returned for strokes without an id or points.
	ErrInvalidStroke = errors.New("history: invalid stroke")

	// ErrInvalidCheckpoint is returned for checkpoints without an id or
	// snapshot.
	ErrInvalidCheckpoint = errors.New("history: invalid checkpoint")

	// ErrCheckpointRange is returned for checkpoints whose stroke index is
	// outside [-1, len(strokes)-1].
	ErrCheckpointRange = errors.New("history: checkpoint index out of range")

	// ErrSnapshotSize is returned when a snapshot does not match the
	// buffer it is built from or restored into.
	ErrSnapshotSize = errors.New("history: snapshot size mismatch")

	// ErrIntegrity wraps every failure reported by CheckIntegrity.
	ErrIntegrity = errors.New("history: integrity violation")
)
