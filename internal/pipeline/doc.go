// Package pipeline is the batch conversion engine.
//
// A [Controller] validates the output directory, optionally scans and
// filters an input directory, then hands the file list to a [Scheduler].
// The scheduler splits the list into fixed-size chunks and runs one [Task]
// per file, either through a worker pool sized to the chunk or one at a
// time, with a barrier at the end of every chunk. Each task converts a
// single file and reports an [Outcome]; failures are values and never abort
// the batch. Outcomes are merged into a [Collector] in file order.
//
// Files:
//   - discover.go:   directory scan and extension filter
//   - task.go:       single-file task, outcome, per-task deadline
//   - scheduler.go:  chunking, worker pool, outcome merge
//   - stats.go:      thread-safe statistics collector
//   - controller.go: batch entry points and phase tracking
//   - runner.go:     CLI glue (config to controller, summary logging)
//   - analyze.go:    --analyze report
package pipeline
