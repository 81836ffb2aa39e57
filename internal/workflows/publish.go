package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/madar/internal/core/domain"
)

// TaskQueue is the default queue the publisher worker listens on.
const TaskQueue = "intervention-publish"

// PublishInput is the input for the publish workflow.
type PublishInput struct {
	Intervention domain.Intervention
}

// PublishInterventionWorkflow stores an intervention, refreshes the map and
// announces it. If the announcement fails the save is undone: a new
// intervention is deleted, a replaced one is restored to its prior state.
func PublishInterventionWorkflow(ctx workflow.Context, input PublishInput) (string, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting publish workflow", "id", input.Intervention.ID)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Save
	var saved SaveResult
	if err := workflow.ExecuteActivity(ctx, "SaveIntervention", input.Intervention).Get(ctx, &saved); err != nil {
		return "", err
	}
	id := saved.ID

	// Step 2: Refresh the map memo. A stale memo expires on its own.
	if err := workflow.ExecuteActivity(ctx, "InvalidateMapView").Get(ctx, nil); err != nil {
		logger.Warn("map invalidation failed", "error", err)
	}

	// Step 3: Announce
	if err := workflow.ExecuteActivity(ctx, "AnnounceIntervention", id).Get(ctx, nil); err != nil {
		logger.Warn("announce failed, compensating", "error", err)
		if saved.Previous != nil {
			_ = workflow.ExecuteActivity(ctx, "RestoreIntervention", *saved.Previous).Get(ctx, nil)
		} else {
			_ = workflow.ExecuteActivity(ctx, "DeleteIntervention", id).Get(ctx, nil)
		}
		return "", err
	}

	logger.Info("Intervention published", "id", id)
	return id, nil
}
