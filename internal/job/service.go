// Package job also provides the FoldService use case orchestrating
// prediction runs: it creates jobs, drives the folding engine, stores
// the result file and keeps the job status current.
package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/seqfold/rnafold-api/internal/extapp"
	"github.com/seqfold/rnafold-api/internal/fold"
	"github.com/seqfold/rnafold-api/internal/seq"
	"github.com/seqfold/rnafold-api/internal/storage"
	"github.com/seqfold/rnafold-api/internal/tools"
)

// defaultTemperature is recorded on jobs that do not set one.
const defaultTemperature = 37

// FoldInput contains the input parameters for a prediction request.
type FoldInput struct {
	// Sequence is the raw nucleotide sequence.
	Sequence string
	// Temperature is the energy-parameter temperature in °C (0 = default).
	Temperature int
	// Engine names the folding engine; empty selects the default.
	Engine string
	// PushToS3 indicates whether to upload the result file to S3.
	PushToS3 bool
}

// PredictorFactory builds a Predictor for a registry engine. The
// default factory creates CLI predictors; tests substitute fakes.
type PredictorFactory func(engine tools.Engine) fold.Predictor

// FoldService orchestrates the prediction workflow. It coordinates
// the engine registry, the predictor, result storage and job
// persistence.
type FoldService struct {
	repo         Repository
	registry     *tools.Registry
	store        storage.Storage
	logger       *slog.Logger
	newPredictor PredictorFactory
	joinTimeout  time.Duration
	defaultTemp  int
}

// ServiceOption configures a FoldService.
type ServiceOption func(*FoldService)

// WithPredictorFactory overrides how predictors are constructed.
func WithPredictorFactory(f PredictorFactory) ServiceOption {
	return func(s *FoldService) {
		if f != nil {
			s.newPredictor = f
		}
	}
}

// WithJoinTimeout bounds how long a single prediction may run.
func WithJoinTimeout(d time.Duration) ServiceOption {
	return func(s *FoldService) {
		if d > 0 {
			s.joinTimeout = d
		}
	}
}

// WithDefaultTemperature sets the temperature recorded on jobs that do
// not request one.
func WithDefaultTemperature(t int) ServiceOption {
	return func(s *FoldService) {
		if t > 0 {
			s.defaultTemp = t
		}
	}
}

// NewFoldService creates a new FoldService.
func NewFoldService(repo Repository, registry *tools.Registry, store storage.Storage, logger *slog.Logger, opts ...ServiceOption) *FoldService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &FoldService{
		repo:        repo,
		registry:    registry,
		store:       store,
		logger:      logger,
		defaultTemp: defaultTemperature,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.newPredictor == nil {
		s.newPredictor = func(engine tools.Engine) fold.Predictor {
			popts := []fold.CLIOption{fold.WithLogger(s.logger)}
			if s.joinTimeout > 0 {
				popts = append(popts, fold.WithJoinTimeout(s.joinTimeout))
			}
			return fold.NewCLIPredictor(engine, popts...)
		}
	}
	return s
}

// CreateJob validates the input, creates a job in IN_QUEUE status and
// persists it.
func (s *FoldService) CreateJob(ctx context.Context, input FoldInput) (*FoldJob, error) {
	sequence, err := seq.NewNucleotideSequence(input.Sequence)
	if err != nil {
		return nil, err
	}
	engine, err := s.registry.Find(input.Engine)
	if err != nil {
		return nil, err
	}

	j := New()
	j.Sequence = sequence.String()
	j.Temperature = input.Temperature
	if j.Temperature == 0 {
		j.Temperature = s.defaultTemp
	}
	j.Engine = engine.Name
	j.PushToS3 = input.PushToS3

	s.logger.Info("creating fold job",
		slog.String("job_id", j.ID),
		slog.String("engine", j.Engine),
		slog.Int("sequence_length", len(j.Sequence)),
		slog.Int("temperature", j.Temperature),
	)

	if err := s.repo.Save(ctx, j); err != nil {
		s.logger.Error("failed to save job",
			slog.String("job_id", j.ID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	return j, nil
}

// Process runs the prediction for an existing job and records the
// outcome. A prediction deadline maps to TIMED_OUT, every other engine
// failure to FAILED; both are terminal for the job.
func (s *FoldService) Process(ctx context.Context, jobID string) (*FoldJob, error) {
	j, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := j.Start(); err != nil {
		return nil, fmt.Errorf("start job %s: %w", j.ID, err)
	}
	if err := s.repo.Save(ctx, j); err != nil {
		return nil, err
	}

	engine, err := s.registry.Find(j.Engine)
	if err != nil {
		_ = j.Fail(err.Error())
		_ = s.repo.Save(ctx, j)
		return j, err
	}
	sequence, err := seq.NewNucleotideSequence(j.Sequence)
	if err != nil {
		_ = j.Fail(err.Error())
		_ = s.repo.Save(ctx, j)
		return j, err
	}

	result, err := s.newPredictor(engine).Predict(ctx, sequence, fold.Options{
		Temperature: j.Temperature,
	})
	if err != nil {
		var timeoutErr *extapp.TimeoutError
		if errors.As(err, &timeoutErr) {
			_ = j.Timeout()
		} else {
			_ = j.Fail(err.Error())
		}
		_ = s.repo.Save(ctx, j)
		s.logger.Error("fold job failed",
			slog.String("job_id", j.ID),
			slog.String("status", string(j.GetStatus())),
			slog.String("error", err.Error()),
		)
		return j, err
	}

	if err := j.Complete(result.DotBracket, result.FreeEnergy, result.BasePairs); err != nil {
		return nil, fmt.Errorf("complete job %s: %w", j.ID, err)
	}
	s.storeResult(ctx, j, result)

	if err := s.repo.Save(ctx, j); err != nil {
		return nil, err
	}

	s.logger.Info("fold job completed",
		slog.String("job_id", j.ID),
		slog.Float64("free_energy", result.FreeEnergy),
		slog.Int("base_pairs", len(result.BasePairs)),
	)
	return j, nil
}

// Run executes the full workflow synchronously: create and process.
func (s *FoldService) Run(ctx context.Context, input FoldInput) (*FoldJob, error) {
	j, err := s.CreateJob(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.Process(ctx, j.ID)
}

// GetJob retrieves a job by ID.
func (s *FoldService) GetJob(ctx context.Context, id string) (*FoldJob, error) {
	return s.repo.FindByID(ctx, id)
}

// ListJobs returns all jobs.
func (s *FoldService) ListJobs(ctx context.Context) ([]*FoldJob, error) {
	return s.repo.List(ctx)
}

// DeleteJob removes a job and its stored result file.
func (s *FoldService) DeleteJob(ctx context.Context, id string) error {
	j, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if j.ResultPath != "" {
		if err := s.store.CleanupTemp(ctx, []string{j.ResultPath}); err != nil {
			s.logger.Warn("failed to remove result file",
				slog.String("job_id", id),
				slog.String("error", err.Error()),
			)
		}
	}
	return s.repo.Delete(ctx, id)
}

// storeResult writes the result file and optionally pushes it to S3.
// Storage failures do not fail a completed prediction; they are logged
// and the job keeps its in-memory result.
func (s *FoldService) storeResult(ctx context.Context, j *FoldJob, result fold.Result) {
	content := fmt.Sprintf(">%s\n%s\n%s (%.2f)\n",
		j.ID, j.Sequence, result.DotBracket, result.FreeEnergy)

	path, err := s.store.SaveTemp(ctx, j.ID, strings.NewReader(content))
	if err != nil {
		s.logger.Warn("failed to store result file",
			slog.String("job_id", j.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	url := ""
	if j.PushToS3 {
		url, err = s.store.UploadToS3(ctx, j.ID+".fold", strings.NewReader(content))
		if err != nil {
			s.logger.Warn("failed to upload result to S3",
				slog.String("job_id", j.ID),
				slog.String("error", err.Error()),
			)
			url = ""
		}
	}

	j.SetResultLocation(path, url)
}
