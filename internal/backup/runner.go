package backup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/gorewood/textbackup/internal/collection"
	"github.com/gorewood/textbackup/internal/config"
	"github.com/gorewood/textbackup/internal/hook"
	"github.com/gorewood/textbackup/internal/logging"
	"github.com/gorewood/textbackup/internal/record"
	"github.com/gorewood/textbackup/internal/snippet"
)

// LockFileName is the run lock created in Runner.LockDir.
const LockFileName = "backup.lock"

// ErrRunInProgress is returned when another run holds the lock.
var ErrRunInProgress = errors.New("another backup run is in progress")

// Runner performs complete backup runs.
type Runner struct {
	Store collection.Store
	// Hooks runs execBeforeExport and execAfterExport; nil skips them.
	Hooks  hook.Runner
	Logger *slog.Logger
	// Location is used for formatted dates; nil means time.Local.
	Location *time.Location
	// LockDir holds the run lock; empty disables locking.
	LockDir string
}

// Run exports every note matching cfg.SearchTerm. The steps are strictly
// sequential: pre-hook, export directory, search, render each note,
// write, post-hook. The first note that fails to render aborts the run
// before anything is written. Hook failures are logged and recorded on
// the result but never fail the run; the post-hook only runs after a
// successful write.
func (r *Runner) Run(ctx context.Context, cfg config.Config) (*Result, error) {
	runID := uuid.NewString()
	log := r.logger().With("run", runID)

	unlock, err := r.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	tmpl := snippet.Assemble(cfg)
	log.Debug("template assembled", "sections", tmpl.Sections(), "template", tmpl.Text())

	dir := cfg.ExportDir()
	combined := ""
	if !cfg.IndividualFiles {
		if combined, err = CombinedPath(dir, cfg); err != nil {
			return nil, err
		}
	}
	subs := map[string]string{
		hook.SubPath:  dir,
		hook.SubFile:  combined,
		hook.SubCount: "0",
		hook.SubQuery: cfg.SearchTerm,
	}

	var warnings []string
	if w := r.runHook(ctx, log, "execBeforeExport", cfg.ExecBeforeExport, subs); w != "" {
		warnings = append(warnings, w)
	}

	if _, err := EnsureDir(dir); err != nil {
		return nil, err
	}

	ids, err := r.Store.FindRecordIDs(ctx, cfg.SearchTerm)
	if err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}
	log.Info("notes selected", "count", len(ids), "query", cfg.SearchTerm)

	projector := &record.Projector{Store: r.Store, Config: cfg, Location: r.Location}
	snippets := make([]string, 0, len(ids))
	metas := make([]snippet.Meta, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, meta, err := projector.Snippet(ctx, tmpl, id)
		if err != nil {
			return nil, err
		}
		snippets = append(snippets, text)
		metas = append(metas, meta)
	}

	res, err := Write(dir, snippets, metas, cfg)
	if err != nil {
		log.Error("backup write failed", "error", err)
		return nil, err
	}

	subs[hook.SubCount] = strconv.Itoa(len(snippets))
	if w := r.runHook(ctx, log, "execAfterExport", cfg.ExecAfterExport, subs); w != "" {
		warnings = append(warnings, w)
	}

	res.RunID = runID
	res.HookWarnings = warnings
	log.Info("backup complete", "notes", res.Notes, "files", len(res.Files), "dir", res.Dir)
	return res, nil
}

func (r *Runner) runHook(ctx context.Context, log *slog.Logger, name string, cmd config.Command, subs map[string]string) string {
	if r.Hooks == nil || cmd.Empty() {
		return ""
	}
	log.Debug("running hook", "hook", name, "command", cmd[0])
	if err := r.Hooks.Run(ctx, cmd, subs); err != nil {
		log.Warn("hook failed", "hook", name, "error", err)
		return fmt.Sprintf("%s: %v", name, err)
	}
	return ""
}

func (r *Runner) lock() (func(), error) {
	if r.LockDir == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(r.LockDir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	fl := flock.New(filepath.Join(r.LockDir, LockFileName))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, ErrRunInProgress
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			r.logger().Warn("failed to release run lock", "error", err)
		}
	}, nil
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return logging.Discard()
	}
	return r.Logger
}
