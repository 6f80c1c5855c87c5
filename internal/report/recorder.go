// File: internal/report/recorder.go
package report

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Status classifies the outcome of a single recorded step.
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
	StatusInfo Status = "INFO"
)

// Step is one logged entry describing an attempted action and its outcome.
// Steps are never mutated after they are appended; their insertion order is
// the report.
type Step struct {
	Description string `json:"description"`
	Status      Status `json:"status"`
}

// Run is the immutable snapshot handed to a renderer.
type Run struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Steps      []Step    `json:"steps"`
}

// Recorder accumulates the chronological step log for a run and echoes every
// step to the logger synchronously as it is appended.
type Recorder struct {
	logger  *zap.Logger
	runID   string
	started time.Time

	mu    sync.Mutex
	steps []Step
}

// NewRecorder creates a Recorder for a fresh run.
func NewRecorder(logger *zap.Logger) *Recorder {
	return &Recorder{
		logger:  logger.Named("report"),
		runID:   uuid.New().String(),
		started: time.Now(),
	}
}

// RunID returns the unique identifier for this run.
func (r *Recorder) RunID() string {
	return r.runID
}

// Record appends a step and logs it immediately. FAIL steps are logged at
// warn level so they stand out on the console without aborting anything.
func (r *Recorder) Record(description string, status Status) {
	r.mu.Lock()
	r.steps = append(r.steps, Step{Description: description, Status: status})
	r.mu.Unlock()

	fields := []zap.Field{zap.String("status", string(status))}
	if status == StatusFail {
		r.logger.Warn(description, fields...)
		return
	}
	r.logger.Info(description, fields...)
}

// Pass records a step with PASS status, the common case.
func (r *Recorder) Pass(description string) {
	r.Record(description, StatusPass)
}

// Snapshot returns a copy of the run suitable for rendering. The copy keeps
// the recorder usable afterwards, though in practice it is taken exactly once
// at shutdown.
func (r *Recorder) Snapshot() *Run {
	r.mu.Lock()
	steps := make([]Step, len(r.steps))
	copy(steps, r.steps)
	r.mu.Unlock()

	return &Run{
		RunID:      r.runID,
		StartedAt:  r.started,
		FinishedAt: time.Now(),
		Steps:      steps,
	}
}
