package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"speech_to_act/backend/go/internal/mapping"
	"speech_to_act/backend/go/internal/models"
	"speech_to_act/backend/go/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	previewed []*models.IntentionContract
	committed []*models.IntentionContract
	confirmed []string
	rejected  []string
	err       error
}

func (g *fakeGateway) Preview(_ context.Context, c *models.IntentionContract) (*models.GatewayPreviewResponse, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.previewed = append(g.previewed, c)
	return &models.GatewayPreviewResponse{
		Success:   true,
		Stage:     models.StagePendingConfirmation,
		PendingID: "pending-1",
		ExpiresAt: "2024-01-01T00:05:00.000Z",
		Preview:   &models.PreviewPayload{Description: "Would create SleepRecord for Louis"},
	}, nil
}

func (g *fakeGateway) Commit(_ context.Context, c *models.IntentionContract) (*models.GatewayCommitResponse, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.committed = append(g.committed, c)
	return &models.GatewayCommitResponse{Success: true, Stage: models.StageCommitted, Message: "ok", MockID: "mock-1"}, nil
}

func (g *fakeGateway) Confirm(_ context.Context, id string) (*models.GatewayCommitResponse, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.confirmed = append(g.confirmed, id)
	return &models.GatewayCommitResponse{Success: true, Stage: models.StageCommitted, MockID: "mock-2"}, nil
}

func (g *fakeGateway) Reject(_ context.Context, id string) (*models.GatewayRejectResponse, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.rejected = append(g.rejected, id)
	return &models.GatewayRejectResponse{Success: true, Stage: models.StageRejected}, nil
}

func (g *fakeGateway) ListPending(context.Context) (*models.PendingListResponse, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &models.PendingListResponse{Count: 1, Pending: []models.PendingSummary{{PendingID: "pending-1", Domain: models.DomainSleep}}}, nil
}

func (g *fakeGateway) HealthCheck(context.Context) bool { return g.err == nil }

func newPipeline(g *fakeGateway) *Pipeline {
	return NewPipeline(mapping.NewMapper(), g, logger.Discard(), "http://gateway")
}

func sleepRequest(workflow models.Workflow) models.ProcessRequest {
	return models.ProcessRequest{
		Facts:    []models.CanonicalFact{{Dimension: models.DimensionSleepState, Value: "ASLEEP", Confidence: 0.95}},
		Targets:  []string{"Louis"},
		Workflow: workflow,
	}
}

func requireStage(t *testing.T, err error, stage models.Stage, status int) *models.StageError {
	t.Helper()
	se, ok := models.AsStageError(err)
	require.True(t, ok, "expected stage error, got %v", err)
	assert.Equal(t, stage, se.Stage)
	assert.Equal(t, status, se.Status)
	return se
}

func TestProcess_SafeByDefault(t *testing.T) {
	g := &fakeGateway{}
	out, err := newPipeline(g).Process(context.Background(), sleepRequest(""))
	require.NoError(t, err)

	assert.Equal(t, models.StagePendingConfirmation, out.Stage)
	assert.Equal(t, models.WorkflowSafe, out.Workflow)
	assert.Equal(t, "pending-1", out.PendingID)
	assert.Equal(t, models.DomainSleep, out.IntentionContract.Domain)
	assert.Equal(t, "ASLEEP", out.IntentionContract.Attributes["state"])
	assert.Nil(t, out.Committed)
	assert.Len(t, g.previewed, 1)
	assert.Empty(t, g.committed)
}

func TestProcess_Fast(t *testing.T) {
	g := &fakeGateway{}
	req := models.ProcessRequest{
		Facts:    []models.CanonicalFact{{Dimension: models.DimensionMedicationType, Value: "ANTIBIOTIC", Confidence: 0.9}},
		Targets:  []string{"Zoé"},
		Workflow: models.WorkflowFast,
	}
	out, err := newPipeline(g).Process(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, models.StageCommitted, out.Stage)
	require.NotNil(t, out.Committed)
	assert.Equal(t, "mock-1", out.Committed.MockID)
	assert.Empty(t, out.PendingID)
	assert.Empty(t, g.previewed)
	require.Len(t, g.committed, 1)
	assert.Equal(t, models.DomainMedication, g.committed[0].Domain)
}

func TestProcess_UnknownWorkflow(t *testing.T) {
	g := &fakeGateway{}
	_, err := newPipeline(g).Process(context.Background(), sleepRequest("turbo"))
	se := requireStage(t, err, models.StageInputValidation, http.StatusBadRequest)
	assert.Equal(t, models.CodeInvalidValue, se.Errors[0].Code)
	assert.Empty(t, g.previewed)
}

func TestProcess_EmptyInputs(t *testing.T) {
	g := &fakeGateway{}
	p := newPipeline(g)

	req := sleepRequest("")
	req.Facts = nil
	_, err := p.Process(context.Background(), req)
	se := requireStage(t, err, models.StageInputValidation, http.StatusBadRequest)
	assert.Equal(t, models.CodeEmptyArray, se.Errors[0].Code)

	req = sleepRequest("")
	req.Targets = []string{}
	_, err = p.Process(context.Background(), req)
	requireStage(t, err, models.StageInputValidation, http.StatusBadRequest)
}

func TestProcess_EmptyInputsReportedBeforeWorkflow(t *testing.T) {
	req := sleepRequest("turbo")
	req.Facts = []models.CanonicalFact{}
	_, err := newPipeline(&fakeGateway{}).Process(context.Background(), req)
	se := requireStage(t, err, models.StageInputValidation, http.StatusBadRequest)
	require.Len(t, se.Errors, 1)
	assert.Equal(t, "facts", se.Errors[0].Field)
	assert.Equal(t, models.CodeEmptyArray, se.Errors[0].Code)
}

func TestProcess_InvalidFacts(t *testing.T) {
	g := &fakeGateway{}
	req := sleepRequest("")
	req.Facts[0].Confidence = 1.5

	_, err := newPipeline(g).Process(context.Background(), req)
	se := requireStage(t, err, models.StageMappingValidation, http.StatusBadRequest)
	require.Len(t, se.Errors, 1)
	assert.Equal(t, "facts[0].confidence", se.Errors[0].Field)
	assert.Empty(t, g.previewed)
}

func TestProcess_UnknownDimension(t *testing.T) {
	g := &fakeGateway{}
	req := sleepRequest("")
	req.Facts[0].Dimension = "UNKNOWN_DIM"

	_, err := newPipeline(g).Process(context.Background(), req)
	se := requireStage(t, err, models.StageMapping, http.StatusBadRequest)
	assert.Contains(t, se.Message, "Mapping failed: no mapping found for dimensions: UNKNOWN_DIM")
	assert.Empty(t, g.previewed)
	assert.Empty(t, g.committed)
}

func TestProcess_GatewayFailureForwarded(t *testing.T) {
	g := &fakeGateway{err: &models.StageError{Stage: models.StageBackendConnection, Status: http.StatusServiceUnavailable}}
	_, err := newPipeline(g).Process(context.Background(), sleepRequest(""))
	requireStage(t, err, models.StageBackendConnection, http.StatusServiceUnavailable)
}

func TestConfirmAndReject(t *testing.T) {
	g := &fakeGateway{}
	p := newPipeline(g)

	out, err := p.Confirm(context.Background(), "pending-1")
	require.NoError(t, err)
	assert.Equal(t, "mock-2", out.MockID)

	_, err = p.Reject(context.Background(), "pending-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"pending-1"}, g.confirmed)
	assert.Equal(t, []string{"pending-2"}, g.rejected)

	_, err = p.Confirm(context.Background(), "")
	requireStage(t, err, models.StageInputValidation, http.StatusBadRequest)
	_, err = p.Reject(context.Background(), "")
	requireStage(t, err, models.StageInputValidation, http.StatusBadRequest)
}

func TestListPending(t *testing.T) {
	out, err := newPipeline(&fakeGateway{}).ListPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, out.Count)
	assert.Equal(t, "pending-1", out.Pending[0].PendingID)

	failure := models.ConnectionError(models.StageGatewayConnection, "intent gateway", errors.New("refused"))
	_, err = newPipeline(&fakeGateway{err: failure}).ListPending(context.Background())
	requireStage(t, err, models.StageGatewayConnection, http.StatusServiceUnavailable)
}

func TestHealth(t *testing.T) {
	h := newPipeline(&fakeGateway{}).Health(context.Background())
	assert.True(t, h.GatewayAvailable)
	assert.Equal(t, "http://gateway", h.GatewayURL)
}
