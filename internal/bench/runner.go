package bench

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// phase is one timed benchmark in the fixed run order
type phase struct {
	name string
	run  func(d *Driver, f File) (Result, error)
}

var phases = []phase{
	{"sequential read", func(d *Driver, f File) (Result, error) { return d.Sequential(f, SeqRead) }},
	{"sequential write", func(d *Driver, f File) (Result, error) { return d.Sequential(f, SeqWrite) }},
	{"random read", func(d *Driver, f File) (Result, error) { return d.Random(f, RandRead) }},
	{"random write", func(d *Driver, f File) (Result, error) { return d.Random(f, RandWrite) }},
}

// Runner sequences file preparation and the four benchmarks. Phases run
// strictly one after another so none of them disturbs another's timing.
type Runner struct {
	driver   *Driver
	direct   bool
	progress io.Writer
	log      *slog.Logger

	// OnResult, when set, is handed each result as soon as its phase
	// completes. An error from it aborts the run.
	OnResult func(Result) error
}

// NewRunner creates a runner. progress receives the human readable
// phase announcements; pass io.Discard to silence them.
func NewRunner(driver *Driver, direct bool, progress io.Writer, log *slog.Logger) *Runner {
	if progress == nil {
		progress = io.Discard
	}
	if log == nil {
		log = driver.log
	}
	return &Runner{
		driver:   driver,
		direct:   direct,
		progress: progress,
		log:      log,
	}
}

// Run opens path, benchmarks it and, when everything succeeded, closes
// and deletes it. On failure the handle is closed but the file is left
// in place for inspection.
func (r *Runner) Run(path string) ([]Result, error) {
	f, err := OpenFile(path, r.direct)
	if err != nil {
		return nil, &Error{Kind: OpenError, Path: path, Err: err}
	}

	results, err := r.RunFile(f, path)
	if err != nil {
		// keep the file around, only give back the handle
		if cerr := f.Close(); cerr != nil {
			r.log.Warn("failed to close file after error", "path", path, "error", cerr)
		}
		return nil, err
	}

	if err := f.Close(); err != nil {
		return nil, &Error{Kind: CloseError, Path: path, Err: err}
	}

	// every phase passed, the file has served its purpose
	if err := os.Remove(path); err != nil {
		return nil, &Error{Kind: CleanupError, Path: path, Err: err}
	}
	r.log.Info("removed benchmark file", "path", path)

	return results, nil
}

// RunFile prepares f and runs every phase over it. name only labels
// diagnostics. The first failure aborts the remaining phases.
func (r *Runner) RunFile(f File, name string) ([]Result, error) {
	extent := r.driver.cfg.FileSize

	// size the file first, the fill only runs over a file of the right extent
	if err := r.driver.Resize(f); err != nil {
		var e *Error
		if errors.As(err, &e) {
			e.Path = name
		}
		return nil, err
	}

	fmt.Fprintln(r.progress, "Prepare the file for the benchmarks...")
	r.log.Info("preparing file", "path", name, "extent", extent)
	if err := r.driver.Fill(f); err != nil {
		return nil, fmt.Errorf("failed to fill the file %s: %w", name, err)
	}

	results := make([]Result, 0, len(phases))
	for _, p := range phases {
		// announce, run, then hand the result off before the next phase
		fmt.Fprintf(r.progress, "Executing the %s benchmark...\n", p.name)
		r.log.Info("starting benchmark", "phase", p.name)

		res, err := p.run(r.driver, f)
		if err != nil {
			return nil, fmt.Errorf("failed to do %s on the file %s: %w", p.name, name, err)
		}

		// a failed report aborts the run like a failed phase
		if r.OnResult != nil {
			if err := r.OnResult(res); err != nil {
				return nil, fmt.Errorf("failed to report %s: %w", p.name, err)
			}
		}
		results = append(results, res)
	}

	return results, nil
}
