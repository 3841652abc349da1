package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/backmassage/heicmaster/internal/check"
	"github.com/backmassage/heicmaster/internal/formats"
	"github.com/backmassage/heicmaster/internal/naming"
)

var (
	// ErrDirectoryCreation is returned when the output directory is missing
	// and cannot be created.
	ErrDirectoryCreation = errors.New("cannot create output directory")
	// ErrOutputNotWritable is returned when the output directory rejects new files.
	ErrOutputNotWritable = errors.New("output directory not writable")
	// ErrFilesFailed is returned when the batch ran but at least one file
	// failed. It is not a setup error: Stats holds the details.
	ErrFilesFailed = errors.New("some files failed to convert")
)

// Phase is the controller's position in a batch call.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhaseScanning
	PhaseScheduling
	PhaseDraining
	PhaseReporting
)

var phaseNames = [...]string{"idle", "validating", "scanning", "scheduling", "draining", "reporting"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int32(p))
	}
	return phaseNames[p]
}

// Controller is the batch entry point. It owns one Collector whose contents
// are reset by every call; read Stats before starting the next batch, and
// use one Controller per concurrent batch.
type Controller struct {
	sched *Scheduler
	stats *Collector
	log   Logger
	phase atomic.Int32
}

// NewController wires a Scheduler with a fresh output name resolver.
func NewController(conv Converter, opts Options, log Logger) (*Controller, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	c := &Controller{
		sched: NewScheduler(conv, naming.NewOutputResolver(), opts, log),
		stats: NewCollector(),
		log:   log,
	}
	c.sched.SetObserver(chunkPhases{c})
	return c, nil
}

// Stats returns a copy of the statistics of the most recent batch.
func (c *Controller) Stats() Stats {
	return c.stats.Snapshot()
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	return Phase(c.phase.Load())
}

func (c *Controller) setPhase(p Phase) {
	c.phase.Store(int32(p))
}

// ProcessFileList converts files as given, without scanning or filtering.
// Setup failures are returned before any file is touched; per-file failures
// yield ErrFilesFailed.
func (c *Controller) ProcessFileList(ctx context.Context, files []string, req Request) error {
	c.begin()
	defer c.setPhase(PhaseIdle)

	if err := c.prepareOutput(req.OutputDir); err != nil {
		return err
	}
	c.log.Info("Batch %s: %d file(s) -> %s", c.batchID(), len(files), req.OutputDir)
	return c.schedule(ctx, files, req)
}

// ProcessDirectory scans root (recursively if asked), keeps the HEIC/HEIF
// files and converts them. An input directory without any such file is not
// an error.
func (c *Controller) ProcessDirectory(ctx context.Context, root string, recursive bool, req Request) error {
	c.begin()
	defer c.setPhase(PhaseIdle)

	if err := checkDir(root); err != nil {
		return err
	}
	if err := c.prepareOutput(req.OutputDir); err != nil {
		return err
	}

	c.setPhase(PhaseScanning)
	all, err := Scan(root, recursive)
	if err != nil {
		return err
	}
	files := FilterByExtension(all, formats.InputFormats())
	c.log.Debug(req.Verbose, "Scanned %d file(s), %d match %s", len(all), len(files),
		strings.Join(formats.InputFormats(), "/"))

	if len(files) == 0 {
		c.log.Warn("No HEIC/HEIF files found in %s", root)
		c.setPhase(PhaseReporting)
		c.stats.Finish()
		return nil
	}
	c.log.Info("Batch %s: found %d HEIC/HEIF file(s) in %s", c.batchID(), len(files), root)
	return c.schedule(ctx, files, req)
}

func (c *Controller) begin() {
	c.setPhase(PhaseValidating)
	c.stats.Reset()
	c.stats.SetBatchID(uuid.NewString())
}

func (c *Controller) batchID() string {
	return c.stats.Snapshot().BatchID
}

// prepareOutput creates dir with parents if needed and probes that new
// files can be created in it.
func (c *Controller) prepareOutput(dir string) error {
	if dir == "" {
		return fmt.Errorf("%w: empty path", ErrDirectoryCreation)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDirectoryCreation, dir, err)
	}
	if err := check.ProbeWritable(dir); err != nil {
		return fmt.Errorf("%w: %v", ErrOutputNotWritable, err)
	}
	return nil
}

func (c *Controller) schedule(ctx context.Context, files []string, req Request) error {
	c.setPhase(PhaseScheduling)
	ok := c.sched.RunBatch(ctx, files, req, c.stats)

	c.setPhase(PhaseReporting)
	c.stats.Finish()
	if ok {
		return nil
	}
	s := c.stats.Snapshot()
	return fmt.Errorf("%w: %d of %d", ErrFilesFailed, s.Failed, s.Total())
}

// chunkPhases maps scheduler chunk boundaries onto controller phases.
type chunkPhases struct{ c *Controller }

func (p chunkPhases) ChunkStarted(int, int) { p.c.setPhase(PhaseScheduling) }
func (p chunkPhases) ChunkDraining(int)     { p.c.setPhase(PhaseDraining) }
