package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"trade-dashboard/src/helpers"
	"trade-dashboard/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor[T any](t *testing.T, ex *Executor[T]) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, ex.Wait(ctx))
}

func fixed(records []string, err error) FetchFunc[string] {
	return func(context.Context) ([]string, error) { return records, err }
}

func TestExecutor_Transitions(t *testing.T) {
	var mu sync.Mutex
	var seen []models.QueryStatus
	ex := NewExecutor[string](func(s models.MQueryResult[string]) {
		mu.Lock()
		seen = append(seen, s.Status)
		mu.Unlock()
	})
	assert.Equal(t, models.StatusIdle, ex.State().Status)

	gen, err := ex.Submit(fixed([]string{"a", "b"}, nil))
	require.NoError(t, err)
	waitFor(t, ex)

	state := ex.State()
	assert.Equal(t, models.StatusSuccess, state.Status)
	assert.Equal(t, []string{"a", "b"}, state.Records)
	assert.Equal(t, gen, state.Generation)

	_, err = ex.Submit(fixed(nil, helpers.NewTransportError("boom", 500, nil)))
	require.NoError(t, err)
	waitFor(t, ex)

	state = ex.State()
	assert.Equal(t, models.StatusFailure, state.Status)
	assert.Equal(t, "boom", state.Message)
	assert.Equal(t, "transport", state.ErrorKind)
	assert.Nil(t, state.Records, "failure must clear prior results")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []models.QueryStatus{
		models.StatusLoading, models.StatusSuccess,
		models.StatusLoading, models.StatusFailure,
	}, seen)
}

func TestExecutor_LoadingClearsResultsAndRejectsReentry(t *testing.T) {
	ex := NewExecutor[string](nil)
	_, err := ex.Submit(fixed([]string{"old"}, nil))
	require.NoError(t, err)
	waitFor(t, ex)

	release := make(chan struct{})
	_, err = ex.Submit(func(context.Context) ([]string, error) {
		<-release
		return []string{"new"}, nil
	})
	require.NoError(t, err)

	state := ex.State()
	assert.Equal(t, models.StatusLoading, state.Status)
	assert.Empty(t, state.Records)

	_, err = ex.Submit(fixed([]string{"other"}, nil))
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	waitFor(t, ex)
	assert.Equal(t, []string{"new"}, ex.State().Records)
}

func TestExecutor_StaleResponseIsDiscarded(t *testing.T) {
	ex := NewExecutor[string](nil)

	releaseA := make(chan struct{})
	doneA := make(chan struct{})
	_, err := ex.Submit(func(ctx context.Context) ([]string, error) {
		defer close(doneA)
		<-releaseA
		// ignores cancellation on purpose
		return []string{"A"}, nil
	})
	require.NoError(t, err)

	genB := ex.Supersede(fixed([]string{"B"}, nil))
	waitFor(t, ex)
	assert.Equal(t, []string{"B"}, ex.State().Records)

	close(releaseA)
	<-doneA
	assert.Never(t, func() bool {
		s := ex.State()
		return s.Generation != genB || len(s.Records) != 1 || s.Records[0] != "B"
	}, 100*time.Millisecond, 5*time.Millisecond)
}

func TestExecutor_SupersedeCancelsInFlight(t *testing.T) {
	ex := NewExecutor[string](nil)
	cancelled := make(chan error, 1)
	_, err := ex.Submit(func(ctx context.Context) ([]string, error) {
		<-ctx.Done()
		cancelled <- ctx.Err()
		return nil, ctx.Err()
	})
	require.NoError(t, err)

	ex.Supersede(fixed([]string{"B"}, nil))

	select {
	case err := <-cancelled:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("superseded request was not cancelled")
	}
	waitFor(t, ex)
	assert.Equal(t, models.StatusSuccess, ex.State().Status)
}

func TestExecutor_Reset(t *testing.T) {
	ex := NewExecutor[string](nil)
	release := make(chan struct{})
	_, err := ex.Submit(func(context.Context) ([]string, error) {
		<-release
		return []string{"late"}, nil
	})
	require.NoError(t, err)

	ex.Reset()
	close(release)

	assert.Never(t, func() bool { return ex.State().Status != models.StatusIdle }, 50*time.Millisecond, 5*time.Millisecond)
	_, err = ex.Submit(fixed(nil, nil))
	require.NoError(t, err)
	waitFor(t, ex)
	assert.Equal(t, models.StatusSuccess, ex.State().Status)
	assert.NotNil(t, ex.State().Records)
	assert.True(t, ex.State().IsEmpty())
}

func TestExecutor_PanicBecomesFailure(t *testing.T) {
	ex := NewExecutor[string](nil)
	_, err := ex.Submit(func(context.Context) ([]string, error) {
		panic("bad payload")
	})
	require.NoError(t, err)
	waitFor(t, ex)

	state := ex.State()
	assert.Equal(t, models.StatusFailure, state.Status)
	assert.NotEmpty(t, state.Message)
}
