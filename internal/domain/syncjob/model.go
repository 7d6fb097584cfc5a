package syncjob

import "time"

type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Progress counts processed ids of a metadata sync run.
type Progress struct {
	Synced  int
	Skipped int
	Failed  int
	Total   int
	Percent int
}

func (p Progress) Processed() int {
	return p.Synced + p.Skipped + p.Failed
}

// WithPercent recomputes Percent from the accumulated counts.
func (p Progress) WithPercent() Progress {
	if p.Total <= 0 {
		p.Percent = 0
		return p
	}
	p.Percent = p.Processed() * 100 / p.Total
	return p
}

// Status is the observable state of the process-wide sync job slot.
type Status struct {
	JobID       string
	State       State
	Progress    *Progress
	Error       string
	StartID     int
	EndID       int
	BatchSize   int
	RateLimitMs int
	StartedAt   *time.Time
	FinishedAt  *time.Time
}

// Run is the persisted summary of a finished or cancelled job.
type Run struct {
	ID          string
	State       State
	Cancelled   bool
	StartID     int
	EndID       int
	BatchSize   int
	RateLimitMs int
	Progress    Progress
	Error       string
	StartedAt   time.Time
	FinishedAt  time.Time
}
