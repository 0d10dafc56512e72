package ports

import (
	"context"
	"io"
)

// RunLogSink holds the per-run log file.
type RunLogSink interface {
	// Open truncates the current run log and returns a writer appending to it.
	Open(ctx context.Context) (io.Writer, error)
	// Rotate closes the current run log and moves it onto the last-import log.
	Rotate(ctx context.Context) error
}
