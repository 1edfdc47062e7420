package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"speech_to_act/backend/go/internal/backendmock"
	"speech_to_act/backend/go/internal/gateway/backend"
	"speech_to_act/backend/go/internal/gateway/service"
	"speech_to_act/backend/go/internal/gateway/store"
	"speech_to_act/backend/go/internal/models"
	"speech_to_act/backend/go/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const sleepContract = `{"domain":"SLEEP","type":"SLEEP_LOG","targets":["Louis"],"attributes":{"state":"ASLEEP"},"metadata":{"confidence":0.95,"source":"deterministic-mapping"}}`

func newGateway(t *testing.T) (*httptest.Server, *store.MemoryStore) {
	t.Helper()
	log := logger.Discard()

	mock := httptest.NewServer(backendmock.NewRouter(backendmock.NewAPI(backendmock.NewService(), log)))
	t.Cleanup(mock.Close)

	pending := store.NewMemoryStore(time.Minute)
	coordinator := service.NewCoordinator(pending, backend.NewClient(mock.URL, nil), log, service.WithBackendURL(mock.URL))
	gw := httptest.NewServer(NewRouter(NewAPI(coordinator, log)))
	t.Cleanup(gw.Close)
	return gw, pending
}

func post(t *testing.T, url, body string) (int, []byte) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestPreviewConfirmFlow(t *testing.T) {
	gw, pending := newGateway(t)

	status, data := post(t, gw.URL+"/api/intents/preview", sleepContract)
	require.Equal(t, http.StatusOK, status, string(data))
	var preview models.GatewayPreviewResponse
	require.NoError(t, json.Unmarshal(data, &preview))
	assert.Equal(t, models.StagePendingConfirmation, preview.Stage)
	assert.NotEmpty(t, preview.PendingID)
	assert.Equal(t, 1, pending.Len())

	resp, err := http.Get(gw.URL + "/api/intents/pending")
	require.NoError(t, err)
	var list models.PendingListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	resp.Body.Close()
	require.Equal(t, 1, list.Count)
	assert.Equal(t, preview.PendingID, list.Pending[0].PendingID)
	assert.Equal(t, "Would create SleepRecord for Louis", list.Pending[0].Description)

	status, data = post(t, gw.URL+"/api/intents/confirm", `{"pending_id":"`+preview.PendingID+`"}`)
	require.Equal(t, http.StatusOK, status, string(data))
	var commit models.GatewayCommitResponse
	require.NoError(t, json.Unmarshal(data, &commit))
	assert.Equal(t, models.StageCommitted, commit.Stage)
	assert.NotEmpty(t, commit.MockID)
	assert.Equal(t, []string{"Louis"}, commit.Contract.Targets)
	assert.Zero(t, pending.Len())

	status, data = post(t, gw.URL+"/api/intents/confirm", `{"pending_id":"`+preview.PendingID+`"}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, string(data), `"stage":"pending_lookup"`)

	status, _ = post(t, gw.URL+"/api/intents/reject", `{"pending_id":"`+preview.PendingID+`"}`)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPreview_LocalValidationFailure(t *testing.T) {
	gw, pending := newGateway(t)

	status, data := post(t, gw.URL+"/api/intents/preview", `{"domain":"SLEEP","type":"SLEEP_LOG","targets":[],"attributes":{}}`)
	assert.Equal(t, http.StatusBadRequest, status)

	var env models.ErrorEnvelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.False(t, env.Success)
	assert.Equal(t, models.StageLocalValidation, env.Stage)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, models.CodeEmptyTargets, env.Errors[0].Code)
	assert.Zero(t, pending.Len())
}

func TestPreview_EmptyBody(t *testing.T) {
	gw, _ := newGateway(t)

	status, data := post(t, gw.URL+"/api/intents/preview", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(data), models.CodeMissingContract)
}

func TestReject(t *testing.T) {
	gw, pending := newGateway(t)

	_, data := post(t, gw.URL+"/api/intents/preview", sleepContract)
	var preview models.GatewayPreviewResponse
	require.NoError(t, json.Unmarshal(data, &preview))

	status, data := post(t, gw.URL+"/api/intents/reject", `{"pending_id":"`+preview.PendingID+`"}`)
	require.Equal(t, http.StatusOK, status, string(data))
	var rejected models.GatewayRejectResponse
	require.NoError(t, json.Unmarshal(data, &rejected))
	assert.Equal(t, "Intent rejected and removed", rejected.Message)
	assert.Equal(t, models.DomainSleep, rejected.Rejected.Domain)
	assert.Zero(t, pending.Len())
}

func TestConfirm_MissingID(t *testing.T) {
	gw, _ := newGateway(t)

	status, data := post(t, gw.URL+"/api/intents/confirm", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(data), `"stage":"input_validation"`)
}

func TestDirectCommit(t *testing.T) {
	gw, pending := newGateway(t)

	status, data := post(t, gw.URL+"/api/intents/commit", sleepContract)
	require.Equal(t, http.StatusOK, status, string(data))
	var commit models.GatewayCommitResponse
	require.NoError(t, json.Unmarshal(data, &commit))
	assert.Equal(t, models.StageCommitted, commit.Stage)
	assert.Zero(t, pending.Len())
}

func TestBackendUnavailable(t *testing.T) {
	log := logger.Discard()
	coordinator := service.NewCoordinator(store.NewMemoryStore(time.Minute), backend.NewClient("http://127.0.0.1:1", nil), log)
	gw := httptest.NewServer(NewRouter(NewAPI(coordinator, log)))
	defer gw.Close()

	status, data := post(t, gw.URL+"/api/intents/preview", sleepContract)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, string(data), `"stage":"backend_connection"`)

	resp, err := http.Get(gw.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	var health map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, false, health["backend_available"])
}
