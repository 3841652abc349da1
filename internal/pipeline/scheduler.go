package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/backmassage/heicmaster/internal/convert"
	"github.com/backmassage/heicmaster/internal/display"
)

// Options control how a batch is scheduled.
type Options struct {
	ChunkSize   int           // Files per chunk; also the peak number of in-flight tasks.
	Parallel    bool          // Run a chunk's tasks concurrently.
	TaskTimeout time.Duration // Per-file deadline; zero disables it.
}

// DefaultOptions returns chunks of 10, parallel, with a 5 minute deadline.
func DefaultOptions() Options {
	return Options{ChunkSize: 10, Parallel: true, TaskTimeout: 5 * time.Minute}
}

// Validate rejects non-positive chunk sizes and negative timeouts.
func (o Options) Validate() error {
	if o.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive (got %d)", o.ChunkSize)
	}
	if o.TaskTimeout < 0 {
		return errors.New("task timeout must not be negative")
	}
	return nil
}

// Request holds the per-batch conversion settings shared by every file.
type Request struct {
	Format       string // Normalized output extension, e.g. "jpg".
	OutputDir    string
	Quality      int
	KeepMetadata bool
	Verbose      bool
}

// Namer hands out collision-free output paths. *naming.OutputResolver
// satisfies it.
type Namer interface {
	Resolve(input, format, outputDir string) (string, error)
	Release(path string) error
	Commit(path string)
}

// Sink receives outcomes in batch order. *Collector satisfies it.
type Sink interface {
	Record(o Outcome)
}

// Observer is told about chunk boundaries. Calls come from the goroutine
// running RunBatch.
type Observer interface {
	ChunkStarted(chunk, size int)
	ChunkDraining(chunk int)
}

// Logger is the subset of logging.Logger used by this package.
type Logger interface {
	Info(format string, args ...any)
	Success(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	Debug(verbose bool, format string, args ...any)
}

// Scheduler runs batches chunk by chunk.
type Scheduler struct {
	conv     Converter
	namer    Namer
	opts     Options
	log      Logger
	observer Observer
}

// NewScheduler creates a Scheduler. opts must pass Validate.
func NewScheduler(conv Converter, namer Namer, opts Options, log Logger) *Scheduler {
	return &Scheduler{conv: conv, namer: namer, opts: opts, log: log}
}

// SetObserver registers o for chunk boundary notifications.
func (s *Scheduler) SetObserver(o Observer) {
	s.observer = o
}

// Partition splits files into consecutive chunks of size n; the last chunk
// may be shorter. n <= 0 yields a single chunk.
func Partition(files []string, n int) [][]string {
	if len(files) == 0 {
		return nil
	}
	if n <= 0 {
		n = len(files)
	}
	chunks := make([][]string, 0, (len(files)+n-1)/n)
	for start := 0; start < len(files); start += n {
		end := min(start+n, len(files))
		chunks = append(chunks, files[start:end])
	}
	return chunks
}

// RunBatch converts files and records every outcome into sink, so that
// afterwards sink has seen exactly len(files) outcomes. Chunk k+1 starts
// only after every task of chunk k has finished. If ctx is cancelled,
// files not yet started are recorded as failed with ErrInterrupted.
// It reports whether every file converted.
func (s *Scheduler) RunBatch(ctx context.Context, files []string, req Request, sink Sink) bool {
	if len(files) == 0 {
		return true
	}

	chunks := Partition(files, s.opts.ChunkSize)
	failed, offset := 0, 0
	for ci, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			remaining := files[offset:]
			s.log.Warn("Interrupted: %d file(s) not started", len(remaining))
			for i, f := range remaining {
				sink.Record(failedOutcome(offset+i, f, "", fmt.Errorf("%w: %v", ErrInterrupted, err)))
				failed++
			}
			break
		}

		s.log.Debug(req.Verbose, "Chunk %d/%d: %d file(s)", ci+1, len(chunks), len(chunk))
		if s.observer != nil {
			s.observer.ChunkStarted(ci, len(chunk))
		}

		for _, o := range s.runChunk(ctx, ci, offset, chunk, req) {
			sink.Record(o)
			s.logOutcome(o)
			if !o.OK() {
				failed++
			}
		}
		offset += len(chunk)
	}
	return failed == 0
}

// runChunk returns one outcome per file of chunk, indexed by position.
func (s *Scheduler) runChunk(ctx context.Context, ci, offset int, chunk []string, req Request) []Outcome {
	outcomes := make([]Outcome, len(chunk))
	tasks := make([]*Task, 0, len(chunk))

	// Names are resolved serially in file order so duplicates get
	// deterministic suffixes regardless of completion order.
	for i, input := range chunk {
		idx := offset + i
		output, err := s.namer.Resolve(input, req.Format, req.OutputDir)
		if err != nil {
			outcomes[i] = failedOutcome(idx, input, "", err)
			continue
		}
		tasks = append(tasks, &Task{
			Index: idx,
			Job: convert.Job{
				InputPath:    input,
				OutputPath:   output,
				Format:       req.Format,
				Quality:      req.Quality,
				KeepMetadata: req.KeepMetadata,
			},
			Timeout:   s.opts.TaskTimeout,
			Converter: s.conv,
			Namer:     s.namer,
		})
	}

	var results []Outcome
	if s.opts.Parallel && len(tasks) > 1 {
		results = s.runPool(ctx, ci, tasks)
	} else {
		results = s.runSequential(ctx, ci, tasks)
	}
	for _, o := range results {
		outcomes[o.Index-offset] = o
	}
	return outcomes
}

// runPool runs tasks on one worker per task. Outcomes arrive on a channel in
// completion order; the caller restores file order by Index.
func (s *Scheduler) runPool(ctx context.Context, ci int, tasks []*Task) []Outcome {
	jobs := make(chan *Task)
	results := make(chan Outcome, len(tasks))

	var g errgroup.Group
	for range tasks {
		g.Go(func() error {
			for t := range jobs {
				results <- t.Run(ctx)
			}
			return nil
		})
	}
	for _, t := range tasks {
		jobs <- t
	}
	close(jobs)

	if s.observer != nil {
		s.observer.ChunkDraining(ci)
	}
	_ = g.Wait()
	close(results)

	out := make([]Outcome, 0, len(tasks))
	for o := range results {
		out = append(out, o)
	}
	return out
}

func (s *Scheduler) runSequential(ctx context.Context, ci int, tasks []*Task) []Outcome {
	out := make([]Outcome, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Run(ctx))
	}
	if s.observer != nil {
		s.observer.ChunkDraining(ci)
	}
	return out
}

func (s *Scheduler) logOutcome(o Outcome) {
	name := filepath.Base(o.Input)
	if !o.OK() {
		s.log.Error("%s: %v", name, o.Err)
		return
	}
	s.log.Success("%s -> %s (%s, %s)", name, filepath.Base(o.Output),
		display.FormatBytes(o.OutputBytes), display.FormatElapsed(o.Elapsed))
}
