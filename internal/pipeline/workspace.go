package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Workspace owns a job's temp files. Every file a job writes lives under
// one directory so a single Close releases everything on any exit path,
// including cancellation and panic-recovery paths.
type Workspace struct {
	root string
	log  *slog.Logger
}

func NewWorkspace(baseDir, jobID string, logger *slog.Logger) (*Workspace, error) {
	if logger == nil {
		logger = slog.Default()
	}
	root, err := os.MkdirTemp(baseDir, "mediora-"+jobID+"-")
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{root: root, log: logger}, nil
}

// Dir is the workspace root directory.
func (w *Workspace) Dir() string { return w.root }

// WriteFile writes data under the workspace and returns the full path.
func (w *Workspace) WriteFile(name string, data []byte) (string, error) {
	path := filepath.Join(w.root, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write workspace file: %w", err)
	}
	return path, nil
}

// Close removes the workspace and everything in it.
func (w *Workspace) Close() {
	if w.root == "" {
		return
	}
	if err := os.RemoveAll(w.root); err != nil {
		w.log.Warn("workspace cleanup failed", "dir", w.root, "error", err)
	}
	w.root = ""
}
