package job

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/seqfold/rnafold-api/internal/extapp"
	"github.com/seqfold/rnafold-api/internal/fold"
	"github.com/seqfold/rnafold-api/internal/seq"
	"github.com/seqfold/rnafold-api/internal/tools"
)

// mockPredictor implements fold.Predictor for testing.
type mockPredictor struct {
	mock.Mock
}

func (m *mockPredictor) Predict(ctx context.Context, sequence seq.NucleotideSequence, opts fold.Options) (fold.Result, error) {
	args := m.Called(ctx, sequence, opts)
	return args.Get(0).(fold.Result), args.Error(1)
}

// mockStorage implements storage.Storage for testing.
type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) SaveTemp(ctx context.Context, name string, data io.Reader) (string, error) {
	args := m.Called(ctx, name, data)
	return args.String(0), args.Error(1)
}

func (m *mockStorage) LoadTemp(ctx context.Context, path string) (io.ReadCloser, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *mockStorage) CleanupTemp(ctx context.Context, paths []string) error {
	args := m.Called(ctx, paths)
	return args.Error(0)
}

func (m *mockStorage) UploadToS3(ctx context.Context, key string, data io.Reader) (string, error) {
	args := m.Called(ctx, key, data)
	return args.String(0), args.Error(1)
}

func newTestService(t *testing.T, predictor fold.Predictor, store *mockStorage) *FoldService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewFoldService(
		NewMemoryRepository(),
		tools.Default(),
		store,
		logger,
		WithPredictorFactory(func(tools.Engine) fold.Predictor { return predictor }),
	)
}

func TestFoldService_CreateJob(t *testing.T) {
	svc := newTestService(t, &mockPredictor{}, &mockStorage{})

	j, err := svc.CreateJob(context.Background(), FoldInput{Sequence: "acgu"})
	require.NoError(t, err)

	assert.NotEmpty(t, j.ID)
	assert.Equal(t, StatusInQueue, j.Status)
	assert.Equal(t, "ACGU", j.Sequence)
	assert.Equal(t, 37, j.Temperature)
	assert.Equal(t, tools.DefaultEngine, j.Engine)
}

func TestFoldService_CreateJob_InvalidSequence(t *testing.T) {
	svc := newTestService(t, &mockPredictor{}, &mockStorage{})

	_, err := svc.CreateJob(context.Background(), FoldInput{Sequence: "ACGX"})
	require.Error(t, err)
}

func TestFoldService_CreateJob_UnknownEngine(t *testing.T) {
	svc := newTestService(t, &mockPredictor{}, &mockStorage{})

	_, err := svc.CreateJob(context.Background(), FoldInput{Sequence: "ACGU", Engine: "mfold"})
	require.ErrorIs(t, err, tools.ErrUnknownEngine)
}

func TestFoldService_Run_Success(t *testing.T) {
	predictor := &mockPredictor{}
	store := &mockStorage{}
	svc := newTestService(t, predictor, store)

	result := fold.Result{
		DotBracket: "(((...)))",
		FreeEnergy: -1.2,
		BasePairs:  [][2]int{{0, 8}, {1, 7}, {2, 6}},
	}
	predictor.On("Predict", mock.Anything, mock.Anything, mock.Anything).Return(result, nil)
	store.On("SaveTemp", mock.Anything, mock.Anything, mock.Anything).Return("/tmp/fold/result", nil)

	j, err := svc.Run(context.Background(), FoldInput{Sequence: "GGGAAACCC"})
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, j.GetStatus())
	assert.Equal(t, "(((...)))", j.DotBracket)
	assert.Equal(t, -1.2, j.FreeEnergy)
	assert.Equal(t, "/tmp/fold/result", j.ResultPath)
	assert.Empty(t, j.ResultURL)
	store.AssertNotCalled(t, "UploadToS3", mock.Anything, mock.Anything, mock.Anything)
}

func TestFoldService_Run_PushToS3(t *testing.T) {
	predictor := &mockPredictor{}
	store := &mockStorage{}
	svc := newTestService(t, predictor, store)

	predictor.On("Predict", mock.Anything, mock.Anything, mock.Anything).
		Return(fold.Result{DotBracket: "....", FreeEnergy: 0}, nil)
	store.On("SaveTemp", mock.Anything, mock.Anything, mock.Anything).Return("/tmp/fold/result", nil)
	store.On("UploadToS3", mock.Anything, mock.Anything, mock.Anything).
		Return("https://bucket.s3.eu-west-1.amazonaws.com/fold.fold", nil)

	j, err := svc.Run(context.Background(), FoldInput{Sequence: "ACGU", PushToS3: true})
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, j.GetStatus())
	assert.Equal(t, "https://bucket.s3.eu-west-1.amazonaws.com/fold.fold", j.ResultURL)
}

func TestFoldService_Run_PredictorFailure(t *testing.T) {
	predictor := &mockPredictor{}
	store := &mockStorage{}
	svc := newTestService(t, predictor, store)

	procErr := &extapp.ProcessError{Bin: "RNAfold", ExitCode: 1, Stderr: "bad input"}
	predictor.On("Predict", mock.Anything, mock.Anything, mock.Anything).
		Return(fold.Result{}, procErr)

	j, err := svc.Run(context.Background(), FoldInput{Sequence: "ACGU"})
	require.Error(t, err)

	assert.Equal(t, StatusFailed, j.GetStatus())
	assert.Contains(t, j.Error, "exited with status 1")
	store.AssertNotCalled(t, "SaveTemp", mock.Anything, mock.Anything, mock.Anything)
}

func TestFoldService_Run_Timeout(t *testing.T) {
	predictor := &mockPredictor{}
	svc := newTestService(t, predictor, &mockStorage{})

	predictor.On("Predict", mock.Anything, mock.Anything, mock.Anything).
		Return(fold.Result{}, &extapp.TimeoutError{})

	j, err := svc.Run(context.Background(), FoldInput{Sequence: "ACGU"})
	require.Error(t, err)

	assert.Equal(t, StatusTimedOut, j.GetStatus())
}

func TestFoldService_Run_StorageFailureKeepsJobCompleted(t *testing.T) {
	predictor := &mockPredictor{}
	store := &mockStorage{}
	svc := newTestService(t, predictor, store)

	predictor.On("Predict", mock.Anything, mock.Anything, mock.Anything).
		Return(fold.Result{DotBracket: "....", FreeEnergy: 0}, nil)
	store.On("SaveTemp", mock.Anything, mock.Anything, mock.Anything).
		Return("", assert.AnError)

	j, err := svc.Run(context.Background(), FoldInput{Sequence: "ACGU"})
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, j.GetStatus())
	assert.Empty(t, j.ResultPath)
}

func TestFoldService_DeleteJob(t *testing.T) {
	predictor := &mockPredictor{}
	store := &mockStorage{}
	svc := newTestService(t, predictor, store)

	predictor.On("Predict", mock.Anything, mock.Anything, mock.Anything).
		Return(fold.Result{DotBracket: "....", FreeEnergy: 0}, nil)
	store.On("SaveTemp", mock.Anything, mock.Anything, mock.Anything).Return("/tmp/fold/result", nil)
	store.On("CleanupTemp", mock.Anything, []string{"/tmp/fold/result"}).Return(nil)

	j, err := svc.Run(context.Background(), FoldInput{Sequence: "ACGU"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteJob(context.Background(), j.ID))
	store.AssertCalled(t, "CleanupTemp", mock.Anything, []string{"/tmp/fold/result"})

	_, err = svc.GetJob(context.Background(), j.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestFoldService_Process_MissingJob(t *testing.T) {
	svc := newTestService(t, &mockPredictor{}, &mockStorage{})

	_, err := svc.Process(context.Background(), "missing")
	require.ErrorIs(t, err, ErrJobNotFound)
}
