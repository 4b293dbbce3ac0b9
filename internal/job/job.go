// Package job provides the FoldJob aggregate for managing
// secondary-structure prediction requests. It includes the job entity
// with guarded state transitions and the repository port for
// persistence.
package job

import (
	"errors"
	"sync"
	"time"

	"github.com/seqfold/rnafold-api/internal/job/id"
)

// Status represents the current state of a FoldJob.
type Status string

const (
	// StatusInQueue indicates the job is waiting to be processed.
	StatusInQueue Status = "IN_QUEUE"
	// StatusRunning indicates the external tool is executing.
	StatusRunning Status = "RUNNING"
	// StatusCompleted indicates the prediction finished successfully.
	StatusCompleted Status = "COMPLETED"
	// StatusFailed indicates the tool failed or its output was unparseable.
	StatusFailed Status = "FAILED"
	// StatusCancelled indicates the job was cancelled.
	StatusCancelled Status = "CANCELLED"
	// StatusTimedOut indicates the tool exceeded its run deadline.
	StatusTimedOut Status = "TIMED_OUT"
)

// ErrInvalidTransition is returned when an invalid state transition is attempted.
var ErrInvalidTransition = errors.New("invalid state transition")

// validTransitions defines which state transitions are allowed.
var validTransitions = map[Status][]Status{
	StatusInQueue:   {StatusRunning, StatusCancelled, StatusTimedOut},
	StatusRunning:   {StatusCompleted, StatusFailed, StatusCancelled, StatusTimedOut},
	StatusCompleted: {},
	StatusFailed:    {},
	StatusCancelled: {},
	StatusTimedOut:  {},
}

// canTransition checks if a transition from one status to another is valid.
func canTransition(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// FoldJob represents one secondary-structure prediction request.
type FoldJob struct {
	mu sync.RWMutex

	// ID is the unique identifier for this job.
	ID string
	// Status is the current job state.
	Status Status
	// Sequence is the nucleotide sequence to fold.
	Sequence string
	// Temperature is the energy-parameter temperature in °C.
	Temperature int
	// Engine is the name of the folding engine to use.
	Engine string
	// DotBracket is the predicted structure once completed.
	DotBracket string
	// FreeEnergy is the free energy (kcal/mol) once completed.
	FreeEnergy float64
	// BasePairs holds the decoded base pairs once completed.
	BasePairs [][2]int
	// Error contains any error message if the job failed.
	Error string
	// PushToS3 indicates whether to upload the result file to S3.
	PushToS3 bool
	// ResultPath is the local path of the stored result file.
	ResultPath string
	// ResultURL is the S3 URL if PushToS3 was true.
	ResultURL string
	// CreatedAt is when the job was created.
	CreatedAt time.Time
	// UpdatedAt is when the job was last updated.
	UpdatedAt time.Time
	// StartedAt is when processing started.
	StartedAt time.Time
	// CompletedAt is when processing finished.
	CompletedAt time.Time
}

// New creates a new FoldJob with a generated ID and initial IN_QUEUE status.
func New() *FoldJob {
	now := time.Now()
	return &FoldJob{
		ID:        id.Generate(),
		Status:    StatusInQueue,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewWithID creates a new FoldJob with the specified ID.
// Useful for testing or when the ID is externally generated.
func NewWithID(jobID string) *FoldJob {
	now := time.Now()
	return &FoldJob{
		ID:        jobID,
		Status:    StatusInQueue,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TransitionTo attempts to change the job status to the specified state.
// Returns ErrInvalidTransition if the transition is not allowed.
func (j *FoldJob) TransitionTo(status Status) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !canTransition(j.Status, status) {
		return ErrInvalidTransition
	}

	j.Status = status
	j.UpdatedAt = time.Now()

	switch status {
	case StatusRunning:
		j.StartedAt = j.UpdatedAt
	case StatusCompleted, StatusFailed, StatusCancelled, StatusTimedOut:
		j.CompletedAt = j.UpdatedAt
	}

	return nil
}

// Start transitions the job from IN_QUEUE to RUNNING.
func (j *FoldJob) Start() error {
	return j.TransitionTo(StatusRunning)
}

// Complete records the prediction and transitions the job to COMPLETED.
func (j *FoldJob) Complete(dotBracket string, freeEnergy float64, basePairs [][2]int) error {
	j.mu.Lock()
	j.DotBracket = dotBracket
	j.FreeEnergy = freeEnergy
	j.BasePairs = basePairs
	j.mu.Unlock()
	return j.TransitionTo(StatusCompleted)
}

// Fail transitions the job to FAILED state with an error message.
func (j *FoldJob) Fail(errMsg string) error {
	j.mu.Lock()
	j.Error = errMsg
	j.mu.Unlock()
	return j.TransitionTo(StatusFailed)
}

// Cancel transitions the job to CANCELLED state.
func (j *FoldJob) Cancel() error {
	return j.TransitionTo(StatusCancelled)
}

// Timeout transitions the job to TIMED_OUT state.
func (j *FoldJob) Timeout() error {
	return j.TransitionTo(StatusTimedOut)
}

// GetStatus returns the current job status (thread-safe).
func (j *FoldJob) GetStatus() Status {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status
}

// SetResultLocation records where the result file was stored.
func (j *FoldJob) SetResultLocation(path, url string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ResultPath = path
	j.ResultURL = url
	j.UpdatedAt = time.Now()
}

// IsTerminal returns true if the job is in a terminal state.
func (j *FoldJob) IsTerminal() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status == StatusCompleted ||
		j.Status == StatusFailed ||
		j.Status == StatusCancelled ||
		j.Status == StatusTimedOut
}

// Clone creates a deep copy of the job for safe reads.
func (j *FoldJob) Clone() *FoldJob {
	j.mu.RLock()
	defer j.mu.RUnlock()

	pairs := make([][2]int, len(j.BasePairs))
	copy(pairs, j.BasePairs)

	return &FoldJob{
		ID:          j.ID,
		Status:      j.Status,
		Sequence:    j.Sequence,
		Temperature: j.Temperature,
		Engine:      j.Engine,
		DotBracket:  j.DotBracket,
		FreeEnergy:  j.FreeEnergy,
		BasePairs:   pairs,
		Error:       j.Error,
		PushToS3:    j.PushToS3,
		ResultPath:  j.ResultPath,
		ResultURL:   j.ResultURL,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
	}
}
