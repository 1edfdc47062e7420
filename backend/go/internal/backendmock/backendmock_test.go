package backendmock

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"speech_to_act/backend/go/internal/models"
	"speech_to_act/backend/go/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func conf(v float64) *float64 { return &v }

func TestEntityType(t *testing.T) {
	assert.Equal(t, "MealRecord", EntityType(models.DomainMeal))
	assert.Equal(t, "DiaperChangeRecord", EntityType(models.DomainDiaper))
	assert.Equal(t, "MedicationRecord", EntityType(models.DomainMedication))
	assert.Equal(t, "Record", EntityType("UNKNOWN"))
}

func TestPreview_Warnings(t *testing.T) {
	s := NewService()

	p := s.Preview(&models.IntentionContract{
		Domain:     models.DomainSleep,
		Type:       models.TypeSleepLog,
		Targets:    []string{"Louis", "Emma"},
		Attributes: map[string]interface{}{"state": "ASLEEP"},
		Metadata:   &models.ContractMetadata{Timestamp: "2024-01-01T10:00:00.000Z", Confidence: conf(0.9)},
	})
	assert.Equal(t, "Would create SleepRecord for Louis, Emma", p.Description)
	assert.Empty(t, p.Warnings)
	require.Len(t, p.AffectedEntities, 1)
	assert.Equal(t, "ASLEEP", p.AffectedEntities[0].Changes["state"])
	assert.Equal(t, "2024-01-01T10:00:00.000Z", p.AffectedEntities[0].Changes["timestamp"])

	p = s.Preview(&models.IntentionContract{
		Domain:     models.DomainMedication,
		Type:       models.TypeMedicationAdministration,
		Targets:    []string{"Zoé"},
		Attributes: map[string]interface{}{"medicationType": "ANTIBIOTIC"},
		Metadata:   &models.ContractMetadata{Confidence: conf(0.5)},
	})
	assert.Equal(t, []string{warnLowConfidence, warnMedication}, p.Warnings)
}

func TestCommit_Receipt(t *testing.T) {
	s := NewService()
	s.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

	r := s.Commit(&models.IntentionContract{Domain: models.DomainMeal, Type: models.TypeMealConsumption, Targets: []string{"Louis"}})
	assert.Equal(t, "Mock commit successful for Louis - MEAL/MEAL_CONSUMPTION", r.Message)
	assert.True(t, strings.HasPrefix(r.MockID, "mock-"))
	assert.Equal(t, "2024-01-01T00:00:00.000Z", r.Timestamp)
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewRouter(NewAPI(NewService(), logger.Discard())))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTP_PreviewAndCommit(t *testing.T) {
	srv := newServer(t)
	body := `{"domain":"SLEEP","type":"SLEEP_LOG","targets":["Louis"],"attributes":{"state":"ASLEEP"}}`

	resp, err := http.Post(srv.URL+"/api/intents/preview", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var preview models.PreviewResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&preview))
	assert.True(t, preview.Success)
	assert.Equal(t, "SleepRecord", preview.Preview.AffectedEntities[0].EntityType)

	resp2, err := http.Post(srv.URL+"/api/intents/commit", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp2.Body.Close()
	var commit models.CommitResponse
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&commit))
	assert.True(t, commit.Success)
	assert.NotEmpty(t, commit.MockID)
}

func TestHTTP_RejectsInvalidContract(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Post(srv.URL+"/api/intents/commit", "application/json", strings.NewReader(`{"domain":"FOOD"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var commit models.CommitResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&commit))
	assert.False(t, commit.Success)
	assert.Equal(t, "Validation failed", commit.Message)
	assert.NotEmpty(t, commit.Errors)
}
