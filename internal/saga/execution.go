package saga

import (
	"time"

	"github.com/Domenick1991/tripsaga/internal/domain"
)

type Status string

const (
	StatusRunning   Status = "RUNNING"
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
)

// Marker names the terminal failure of an execution.
type Marker string

const (
	FailedFromFlight   Marker = "SagaFailedFromFlight"
	FailedFromHotel    Marker = "SagaFailedFromHotel"
	FailedFromPayment  Marker = "SagaFailedFromPayment"
	CompensationFailed Marker = "SagaCompensationFailed"
)

type StepStatus string

const (
	StepSucceeded   StepStatus = "SUCCEEDED"
	StepAlreadyDone StepStatus = "ALREADY_DONE"
	StepFailed      StepStatus = "FAILED"
)

// StepRecord is one invocation in the execution history. Compensations get
// their own records named after the chain they belong to.
type StepRecord struct {
	Name         string     `json:"name"`
	Compensation bool       `json:"compensation,omitempty"`
	Status       StepStatus `json:"status"`
	Attempts     int        `json:"attempts"`
	Error        string     `json:"error,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   time.Time  `json:"finished_at"`
}

// Execution is the outcome of one saga run.
type Execution struct {
	ID         string        `json:"execution_id"`
	TripID     domain.TripID `json:"trip_id"`
	Status     Status        `json:"status"`
	FailedStep string        `json:"failed_step,omitempty"`
	Marker     Marker        `json:"failure_marker,omitempty"`
	Cause      string        `json:"cause,omitempty"`
	Steps      []StepRecord  `json:"steps"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`

	err error
}

func (e *Execution) Succeeded() bool {
	return e.Status == StatusSucceeded
}

// Err returns the error that ended a failed execution, nil otherwise.
func (e *Execution) Err() error {
	return e.err
}

func (e *Execution) record(r StepRecord) {
	e.Steps = append(e.Steps, r)
}

func (e *Execution) fail(step string, marker Marker, cause error) {
	e.Status = StatusFailed
	e.FailedStep = step
	e.Marker = marker
	e.err = cause
	if cause != nil {
		e.Cause = cause.Error()
	}
}

// compensationFailed keeps the failed forward step but replaces the marker.
func (e *Execution) compensationFailed(cause error) {
	e.Marker = CompensationFailed
	e.err = cause
	e.Cause = cause.Error()
}
