package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/backmassage/heicmaster/internal/convert"
)

var (
	// ErrTaskTimeout marks a file whose conversion exceeded the per-task deadline.
	ErrTaskTimeout = errors.New("conversion timed out")
	// ErrInterrupted marks a file cancelled or never started because the batch was cancelled.
	ErrInterrupted = errors.New("interrupted")
	// ErrPanic marks a file whose converter panicked.
	ErrPanic = errors.New("converter panicked")
)

// Converter converts a single file. *convert.Converter satisfies it.
type Converter interface {
	Convert(ctx context.Context, job convert.Job) error
}

// ConverterFunc adapts a function to Converter.
type ConverterFunc func(ctx context.Context, job convert.Job) error

// Convert calls f.
func (f ConverterFunc) Convert(ctx context.Context, job convert.Job) error {
	return f(ctx, job)
}

// Status tags an Outcome.
type Status int

const (
	StatusFailed Status = iota
	StatusConverted
)

func (s Status) String() string {
	if s == StatusConverted {
		return "converted"
	}
	return "failed"
}

// Outcome is the result of one task. Index is the file's position in the batch.
type Outcome struct {
	Index       int
	Input       string
	Output      string
	Status      Status
	Err         error
	InputBytes  int64
	OutputBytes int64
	Elapsed     time.Duration
}

// OK reports whether the file was converted.
func (o Outcome) OK() bool {
	return o.Status == StatusConverted
}

func failedOutcome(index int, input, output string, err error) Outcome {
	return Outcome{Index: index, Input: input, Output: output, Status: StatusFailed, Err: err}
}

// Task converts one file. Converter errors, panics and deadline expiry all
// end up in the returned Outcome; Run never panics or blocks past Timeout.
type Task struct {
	Index     int
	Job       convert.Job
	Timeout   time.Duration // Zero disables the deadline.
	Converter Converter
	Namer     Namer // Optional; releases or commits the reserved output.
}

// Run executes the task.
func (t *Task) Run(ctx context.Context) Outcome {
	start := time.Now()
	o := Outcome{Index: t.Index, Input: t.Job.InputPath, Output: t.Job.OutputPath}
	if fi, err := os.Stat(t.Job.InputPath); err == nil {
		o.InputBytes = fi.Size()
	}

	err := t.convert(ctx)
	o.Elapsed = time.Since(start)

	if err != nil {
		o.Status = StatusFailed
		o.Err = err
		if t.Namer != nil {
			_ = t.Namer.Release(t.Job.OutputPath)
		}
		return o
	}

	o.Status = StatusConverted
	if fi, err := os.Stat(t.Job.OutputPath); err == nil {
		o.OutputBytes = fi.Size()
	}
	if t.Namer != nil {
		t.Namer.Commit(t.Job.OutputPath)
	}
	return o
}

func (t *Task) convert(parent context.Context) error {
	if err := parent.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrInterrupted, err)
	}

	ctx, cancel := parent, context.CancelFunc(func() {})
	if t.Timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, t.Timeout)
	}
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("%w: %v", ErrPanic, r)
			}
		}()
		done <- t.Converter.Convert(ctx, t.Job)
	}()

	select {
	case err := <-done:
		if err != nil && ctx.Err() != nil && isContextErr(err) {
			return t.deadlineErr(parent)
		}
		return err
	case <-ctx.Done():
		return t.deadlineErr(parent)
	}
}

// deadlineErr distinguishes batch cancellation from the per-task deadline.
func (t *Task) deadlineErr(parent context.Context) error {
	if err := parent.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrInterrupted, err)
	}
	return fmt.Errorf("%w after %s", ErrTaskTimeout, t.Timeout)
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
