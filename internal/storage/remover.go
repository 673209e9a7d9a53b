package storage

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"inkwell/internal/middleware"
)

// Remover deletes previously stored files in the background.
type Remover struct {
	dir string
	wg  sync.WaitGroup
}

// NewRemover removes files from dir.
func NewRemover(dir string) *Remover {
	return &Remover{dir: dir}
}

// Remove deletes filename without blocking the caller. Empty names are
// ignored, a missing file is logged and swallowed, other failures are logged.
func (r *Remover) Remove(filename string) {
	if filename == "" {
		return
	}
	// Never follow a stored name outside the upload directory.
	name := filepath.Base(filename)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.remove(context.Background(), name)
	}()
}

func (r *Remover) remove(ctx context.Context, name string) {
	err := os.Remove(filepath.Join(r.dir, name))
	switch {
	case err == nil:
		middleware.Logger.InfoContext(ctx, "removed stored file", slog.String("file", name))
	case errors.Is(err, fs.ErrNotExist):
		middleware.Logger.InfoContext(ctx, "file already removed", slog.String("file", name))
	default:
		middleware.Logger.WarnContext(ctx, "failed to remove stored file",
			slog.String("file", name),
			slog.String("error", err.Error()),
		)
	}
}

// Wait blocks until every pending removal has finished.
func (r *Remover) Wait() {
	r.wg.Wait()
}
