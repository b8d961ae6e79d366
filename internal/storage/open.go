package storage

import (
	"context"
	"log/slog"
)

// Open picks the dedup backend for a run: Postgres when dsn is set and
// reachable, the JSON file at filePath otherwise. An unreachable database
// is logged and never stops the run. The returned func releases the backend.
func Open(ctx context.Context, dsn, filePath string, logger *slog.Logger) (Backend, func()) {
	if logger == nil {
		logger = slog.Default()
	}

	if dsn != "" {
		pb, err := NewPostgresBackend(ctx, dsn, logger)
		if err == nil {
			return pb, func() { pb.Close() }
		}
		logger.Error("Failed to connect dedup database, falling back to file store", "path", filePath, "error", err)
	}

	fb := NewFileBackend(filePath)
	logger.Debug("Using file dedup store", "path", fb.Path())
	return fb, func() {}
}
