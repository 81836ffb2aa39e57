package workflows

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/samirrijal/madar/internal/core/domain"
	"github.com/samirrijal/madar/internal/core/usecases"
)

func cairoBench() domain.Intervention {
	return domain.Intervention{
		ID:       "cairo-1",
		Type:     domain.InterventionBench,
		Place:    "Al-Azhar Park, Cairo",
		Location: domain.GeoPoint{Lat: 30.0406, Lon: 31.2635},
	}
}

func TestPublishInterventionWorkflow_Success(t *testing.T) {
	var s testsuite.WorkflowTestSuite
	env := s.NewTestWorkflowEnvironment()
	env.RegisterActivity(&PublishActivities{})

	env.OnActivity("SaveIntervention", mock.Anything, mock.Anything).Return(SaveResult{ID: "cairo-1"}, nil).Once()
	env.OnActivity("InvalidateMapView", mock.Anything).Return(nil).Once()
	env.OnActivity("AnnounceIntervention", mock.Anything, "cairo-1").Return(nil).Once()

	env.ExecuteWorkflow(PublishInterventionWorkflow, PublishInput{Intervention: cairoBench()})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var id string
	require.NoError(t, env.GetWorkflowResult(&id))
	assert.Equal(t, "cairo-1", id)
	env.AssertExpectations(t)
}

func TestPublishInterventionWorkflow_CompensatesWhenAnnounceFails(t *testing.T) {
	var s testsuite.WorkflowTestSuite
	env := s.NewTestWorkflowEnvironment()
	env.RegisterActivity(&PublishActivities{})

	env.OnActivity("SaveIntervention", mock.Anything, mock.Anything).Return(SaveResult{ID: "cairo-1"}, nil)
	env.OnActivity("InvalidateMapView", mock.Anything).Return(nil)
	env.OnActivity("AnnounceIntervention", mock.Anything, "cairo-1").Return(errors.New("nats down"))
	env.OnActivity("DeleteIntervention", mock.Anything, "cairo-1").Return(nil).Once()

	env.ExecuteWorkflow(PublishInterventionWorkflow, PublishInput{Intervention: cairoBench()})

	require.True(t, env.IsWorkflowCompleted())
	assert.Error(t, env.GetWorkflowError())
	env.AssertExpectations(t)
}

func TestPublishInterventionWorkflow_RestoresReplacedRow(t *testing.T) {
	var s testsuite.WorkflowTestSuite
	env := s.NewTestWorkflowEnvironment()
	env.RegisterActivity(&PublishActivities{})

	prior := cairoBench()
	prior.Title = "Memory Bench"
	prior.InteractCount = 42

	env.OnActivity("SaveIntervention", mock.Anything, mock.Anything).
		Return(SaveResult{ID: "cairo-1", Previous: &prior}, nil)
	env.OnActivity("InvalidateMapView", mock.Anything).Return(nil)
	env.OnActivity("AnnounceIntervention", mock.Anything, "cairo-1").Return(errors.New("nats down"))
	env.OnActivity("RestoreIntervention", mock.Anything, mock.MatchedBy(func(it domain.Intervention) bool {
		return it.ID == "cairo-1" && it.Title == "Memory Bench" && it.InteractCount == 42
	})).Return(nil).Once()

	env.ExecuteWorkflow(PublishInterventionWorkflow, PublishInput{Intervention: cairoBench()})

	require.True(t, env.IsWorkflowCompleted())
	assert.Error(t, env.GetWorkflowError())
	env.AssertExpectations(t)
	env.AssertNotCalled(t, "DeleteIntervention", mock.Anything, mock.Anything)
}

func TestPublishInterventionWorkflow_SaveFailureStops(t *testing.T) {
	var s testsuite.WorkflowTestSuite
	env := s.NewTestWorkflowEnvironment()
	env.RegisterActivity(&PublishActivities{})

	env.OnActivity("SaveIntervention", mock.Anything, mock.Anything).
		Return(SaveResult{}, temporal.NewNonRetryableApplicationError("bad location", "validation", nil))

	env.ExecuteWorkflow(PublishInterventionWorkflow, PublishInput{Intervention: cairoBench()})

	require.True(t, env.IsWorkflowCompleted())
	assert.Error(t, env.GetWorkflowError())
	env.AssertNotCalled(t, "AnnounceIntervention", mock.Anything, mock.Anything)
}

// ── activity tests ───────────────────────────────────────────────────────

type fakeRepo struct {
	existing map[string]domain.Intervention
	upserted []domain.Intervention
	deleteFn func(id string) error
}

func (f *fakeRepo) Upsert(_ context.Context, item *domain.Intervention) error {
	f.upserted = append(f.upserted, *item)
	return nil
}
func (f *fakeRepo) UpsertBatch(context.Context, []domain.Intervention) error { return nil }
func (f *fakeRepo) GetByID(_ context.Context, id string) (*domain.Intervention, error) {
	if it, ok := f.existing[id]; ok {
		return &it, nil
	}
	return nil, fmt.Errorf("%s: %w", id, domain.ErrNotFound)
}
func (f *fakeRepo) GetByIDs(context.Context, []string) ([]domain.Intervention, error) { return nil, nil }
func (f *fakeRepo) List(context.Context, domain.InterventionFilter) ([]domain.Intervention, error) {
	return nil, nil
}
func (f *fakeRepo) Delete(_ context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(id)
	}
	return nil
}
func (f *fakeRepo) IncrementInteractions(context.Context, string) error { return nil }

func TestSaveIntervention_AppliesDefaults(t *testing.T) {
	repo := &fakeRepo{}
	acts := &PublishActivities{Interventions: repo, Map: usecases.NewMapService(repo, nil, nil, 0)}

	res, err := acts.SaveIntervention(context.Background(), cairoBench())
	require.NoError(t, err)
	assert.Equal(t, "cairo-1", res.ID)
	assert.Nil(t, res.Previous)
	require.Len(t, repo.upserted, 1)
	assert.Equal(t, domain.StatusActive, repo.upserted[0].Status)
	assert.False(t, repo.upserted[0].CreatedAt.IsZero())
}

func TestSaveIntervention_SnapshotsExistingRow(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	prior := cairoBench()
	prior.Title = "Memory Bench"
	prior.InteractCount = 42
	prior.CreatedAt = created

	repo := &fakeRepo{existing: map[string]domain.Intervention{"cairo-1": prior}}
	acts := &PublishActivities{Interventions: repo, Map: usecases.NewMapService(repo, nil, nil, 0)}

	next := cairoBench()
	next.Title = "Renamed Bench"
	res, err := acts.SaveIntervention(context.Background(), next)
	require.NoError(t, err)

	require.NotNil(t, res.Previous)
	assert.Equal(t, "Memory Bench", res.Previous.Title)
	assert.Equal(t, 42, res.Previous.InteractCount)

	require.Len(t, repo.upserted, 1)
	assert.Equal(t, "Renamed Bench", repo.upserted[0].Title)
	assert.Equal(t, 42, repo.upserted[0].InteractCount)
	assert.Equal(t, created, repo.upserted[0].CreatedAt)
}

func TestRestoreIntervention_WritesSnapshotBack(t *testing.T) {
	repo := &fakeRepo{}
	acts := &PublishActivities{Interventions: repo, Map: usecases.NewMapService(repo, nil, nil, 0)}

	prior := cairoBench()
	prior.InteractCount = 42
	require.NoError(t, acts.RestoreIntervention(context.Background(), prior))

	require.Len(t, repo.upserted, 1)
	assert.Equal(t, prior, repo.upserted[0])
}

func TestSaveIntervention_ValidationIsNonRetryable(t *testing.T) {
	repo := &fakeRepo{}
	acts := &PublishActivities{Interventions: repo, Map: usecases.NewMapService(repo, nil, nil, 0)}

	bad := cairoBench()
	bad.Location.Lat = 95
	_, err := acts.SaveIntervention(context.Background(), bad)

	var appErr *temporal.ApplicationError
	require.ErrorAs(t, err, &appErr)
	assert.True(t, appErr.NonRetryable())
	assert.Empty(t, repo.upserted)
}

func TestDeleteIntervention_ToleratesMissing(t *testing.T) {
	repo := &fakeRepo{deleteFn: func(id string) error { return fmt.Errorf("%s: %w", id, domain.ErrNotFound) }}
	acts := &PublishActivities{Interventions: repo, Map: usecases.NewMapService(repo, nil, nil, 0)}

	assert.NoError(t, acts.DeleteIntervention(context.Background(), "gone"))
}

func TestAnnounceIntervention_NoPublisher(t *testing.T) {
	acts := &PublishActivities{}
	assert.NoError(t, acts.AnnounceIntervention(context.Background(), "cairo-1"))
}
