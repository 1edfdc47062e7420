package mapping

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"speech_to_act/backend/go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fact(dim models.Dimension, value string, confidence float64) models.CanonicalFact {
	return models.CanonicalFact{Dimension: dim, Value: value, Confidence: confidence}
}

func TestMap_SingleMealFact(t *testing.T) {
	cases := []struct {
		dim models.Dimension
		key string
	}{
		{models.DimensionMealMainConsumption, "main"},
		{models.DimensionMealDessertConsumption, "dessert"},
		{models.DimensionMealVegetableConsumption, "vegetable"},
		{models.DimensionMealType, "mealType"},
	}
	m := NewMapper()
	for _, tc := range cases {
		t.Run(string(tc.dim), func(t *testing.T) {
			c, err := m.Map([]models.CanonicalFact{fact(tc.dim, "HALF", 0.83)}, []string{"Lucas"})
			require.NoError(t, err)
			assert.Equal(t, models.DomainMeal, c.Domain)
			assert.Equal(t, models.TypeMealConsumption, c.Type)
			assert.Equal(t, map[string]interface{}{tc.key: "HALF"}, c.Attributes)
			require.NotNil(t, c.Metadata.Confidence)
			assert.Equal(t, 0.83, *c.Metadata.Confidence)
		})
	}
}

func TestMap_MealAggregatesAllDimensions(t *testing.T) {
	facts := []models.CanonicalFact{
		fact(models.DimensionMealMainConsumption, "HALF", 0.9),
		fact(models.DimensionMealDessertConsumption, "ALL", 0.8),
		fact(models.DimensionMealVegetableConsumption, "NOTHING", 0.7),
		fact(models.DimensionMealType, "LUNCH", 0.6),
	}
	c, err := NewMapper().Map(facts, []string{"Emma"})
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{
		"main":      "HALF",
		"dessert":   "ALL",
		"vegetable": "NOTHING",
		"mealType":  "LUNCH",
	}, c.Attributes)
	assert.InDelta(t, 0.75, *c.Metadata.Confidence, 1e-9)
}

func TestMap_SingleDimensionDomains(t *testing.T) {
	cases := []struct {
		dim      models.Dimension
		value    string
		domain   models.Domain
		typ      string
		attrName string
	}{
		{models.DimensionSleepState, "ASLEEP", models.DomainSleep, models.TypeSleepLog, "state"},
		{models.DimensionDiaperChangeType, "WET", models.DomainDiaper, models.TypeDiaperChange, "changeType"},
		{models.DimensionActivityType, "CRAFT", models.DomainActivity, models.TypeActivityLog, "activityType"},
		{models.DimensionHealthStatus, "FEVER", models.DomainHealth, models.TypeHealthObservation, "status"},
		{models.DimensionChildMood, "HAPPY", models.DomainBehavior, models.TypeBehaviorLog, "mood"},
		{models.DimensionMedicationType, "ANTIBIOTIC", models.DomainMedication, models.TypeMedicationAdministration, "medicationType"},
	}
	m := NewMapper()
	for _, tc := range cases {
		t.Run(string(tc.domain), func(t *testing.T) {
			c, err := m.Map([]models.CanonicalFact{fact(tc.dim, tc.value, 0.42)}, []string{"Zoé"})
			require.NoError(t, err)
			assert.Equal(t, tc.domain, c.Domain)
			assert.Equal(t, tc.typ, c.Type)
			assert.Equal(t, map[string]interface{}{tc.attrName: tc.value}, c.Attributes)
			assert.Equal(t, 0.42, *c.Metadata.Confidence)
			assert.Equal(t, Source, c.Metadata.Source)
			assert.Equal(t, []string{"Zoé"}, c.Targets)
		})
	}
}

func TestMap_PriorityOrder(t *testing.T) {
	// 餐食优先于睡眠，睡眠优先于用药。
	facts := []models.CanonicalFact{
		fact(models.DimensionMedicationType, "VITAMIN", 0.5),
		fact(models.DimensionSleepState, "ASLEEP", 0.9),
		fact(models.DimensionMealType, "SNACK", 0.7),
	}
	c, err := NewMapper().Map(facts, []string{"Paul"})
	require.NoError(t, err)
	assert.Equal(t, models.DomainMeal, c.Domain)
	assert.Equal(t, 0.7, *c.Metadata.Confidence)

	c, err = NewMapper().Map(facts[:2], []string{"Paul"})
	require.NoError(t, err)
	assert.Equal(t, models.DomainSleep, c.Domain)
}

func TestMap_FirstMatchingFactWinsForSingleDimension(t *testing.T) {
	facts := []models.CanonicalFact{
		fact(models.DimensionChildMood, "CALM", 0.6),
		fact(models.DimensionChildMood, "UPSET", 0.9),
	}
	c, err := NewMapper().Map(facts, []string{"Hugo"})
	require.NoError(t, err)
	assert.Equal(t, "CALM", c.Attributes["mood"])
	assert.Equal(t, 0.6, *c.Metadata.Confidence)
}

func TestMap_DeterministicUnderReplay(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	m := NewMapper(WithClock(func() time.Time { return fixed }))
	facts := []models.CanonicalFact{
		fact(models.DimensionMealMainConsumption, "ALL", 0.9),
		fact(models.DimensionMealType, "DINNER", 0.8),
	}
	targets := []string{"Léa", "Hugo"}

	first, err := m.Map(facts, targets)
	require.NoError(t, err)
	second, err := m.Map(facts, targets)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
	assert.Equal(t, "2024-03-01T09:30:00.000Z", first.Metadata.Timestamp)
}

func TestMap_DoesNotAliasTargets(t *testing.T) {
	targets := []string{"Louis"}
	c, err := NewMapper().Map([]models.CanonicalFact{fact(models.DimensionSleepState, "ASLEEP", 0.9)}, targets)
	require.NoError(t, err)
	targets[0] = "Someone else"
	assert.Equal(t, []string{"Louis"}, c.Targets)
}

func TestMap_CallerErrors(t *testing.T) {
	m := NewMapper()
	facts := []models.CanonicalFact{fact(models.DimensionSleepState, "ASLEEP", 0.9)}

	c, err := m.Map(nil, []string{"Louis"})
	assert.Nil(t, c)
	assert.ErrorIs(t, err, ErrEmptyFacts)

	c, err = m.Map(facts, []string{})
	assert.Nil(t, c)
	assert.ErrorIs(t, err, ErrEmptyTargets)
}

func TestMap_UnknownDimension(t *testing.T) {
	c, err := NewMapper().Map([]models.CanonicalFact{
		fact("UNKNOWN_DIM", "x", 0.5),
		fact("OTHER_DIM", "y", 0.5),
	}, []string{"Louis"})
	assert.Nil(t, c)

	var unmatched *UnmatchedError
	require.True(t, errors.As(err, &unmatched))
	assert.Equal(t, []models.Dimension{"UNKNOWN_DIM", "OTHER_DIM"}, unmatched.Dimensions)
	assert.Equal(t, "no mapping found for dimensions: UNKNOWN_DIM, OTHER_DIM", err.Error())
}

func TestValidateFacts(t *testing.T) {
	assert.Empty(t, ValidateFacts([]models.CanonicalFact{
		fact(models.DimensionSleepState, "ASLEEP", 0),
		fact(models.DimensionSleepState, "ASLEEP", 1),
	}))

	errs := ValidateFacts(nil)
	require.Len(t, errs, 1)
	assert.Equal(t, models.CodeEmptyArray, errs[0].Code)

	errs = ValidateFacts([]models.CanonicalFact{
		{Dimension: "", Value: "", Confidence: 1.5},
		{Dimension: models.DimensionChildMood, Value: "HAPPY", Confidence: math.NaN()},
	})
	require.Len(t, errs, 4)
	assert.Equal(t, "facts[0].dimension", errs[0].Field)
	assert.Equal(t, models.CodeRequiredField, errs[0].Code)
	assert.Equal(t, "facts[0].value", errs[1].Field)
	assert.Equal(t, models.CodeRequiredField, errs[1].Code)
	assert.Equal(t, "facts[0].confidence", errs[2].Field)
	assert.Equal(t, models.CodeInvalidValue, errs[2].Code)
	assert.Equal(t, "facts[1].confidence", errs[3].Field)

	errs = ValidateFacts([]models.CanonicalFact{fact(models.DimensionChildMood, "HAPPY", -0.1)})
	require.Len(t, errs, 1)
}

func TestSchema(t *testing.T) {
	s := GetSchema()
	assert.Len(t, s.Domains, 7)
	require.Len(t, s.Dimensions, 10)
	assert.Equal(t, models.DimensionMealMainConsumption, s.Dimensions[0].Dimension)

	info, ok := LookupDimension(models.DimensionChildMood)
	require.True(t, ok)
	assert.Equal(t, models.DomainBehavior, info.Domain)
	assert.Contains(t, info.ValidValues, "CRANKY")

	_, ok = LookupDimension("NOPE")
	assert.False(t, ok)

	// 每个维度的所属业务域都能被对应的识别器认领。
	m := NewMapper()
	for _, dim := range s.Dimensions {
		c, err := m.Map([]models.CanonicalFact{fact(dim.Dimension, dim.ValidValues[0], 0.9)}, []string{"Nathan"})
		require.NoError(t, err, dim.Dimension)
		assert.Equal(t, dim.Domain, c.Domain, dim.Dimension)
	}
}

func TestClassifierPrompt(t *testing.T) {
	p := ClassifierPrompt()
	assert.True(t, strings.HasPrefix(p, "You must classify"))
	assert.Contains(t, p, "## SLEEP_STATE\n")
	assert.Contains(t, p, "Valid values: PAIN_RELIEVER, ANTIBIOTIC, ALLERGY, VITAMIN, OTHER")
	assert.Contains(t, p, `"targets": ["<child_name>", ...]`)
}

func TestMapValidated_Stages(t *testing.T) {
	m := NewMapper()
	ok := []models.CanonicalFact{fact(models.DimensionSleepState, "ASLEEP", 0.9)}

	cases := []struct {
		name    string
		facts   []models.CanonicalFact
		targets []string
		stage   models.Stage
	}{
		{"no facts", nil, []string{"Louis"}, models.StageInputValidation},
		{"no targets", ok, nil, models.StageInputValidation},
		{"invalid fact", []models.CanonicalFact{fact("", "ASLEEP", 0.9)}, []string{"Louis"}, models.StageMappingValidation},
		{"unmatched", []models.CanonicalFact{fact("UNKNOWN_DIM", "X", 0.9)}, []string{"Louis"}, models.StageMapping},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.MapValidated(tc.facts, tc.targets)
			se, isStage := models.AsStageError(err)
			require.True(t, isStage)
			assert.Equal(t, tc.stage, se.Stage)
			assert.Equal(t, 400, se.Status)
		})
	}

	_, err := m.MapValidated([]models.CanonicalFact{fact("UNKNOWN_DIM", "X", 0.9)}, []string{"Louis"})
	var unmatched *UnmatchedError
	assert.True(t, errors.As(err, &unmatched))

	c, err := m.MapValidated(ok, []string{"Louis"})
	require.NoError(t, err)
	assert.Equal(t, models.DomainSleep, c.Domain)
}

func TestValidateFacts_MissingConfidence(t *testing.T) {
	var facts []models.CanonicalFact
	require.NoError(t, json.Unmarshal([]byte(`[
		{"dimension":"SLEEP_STATE","value":"ASLEEP"},
		{"dimension":"SLEEP_STATE","value":"ASLEEP","confidence":null},
		{"dimension":"SLEEP_STATE","value":"ASLEEP","confidence":0}
	]`), &facts))

	errs := ValidateFacts(facts)
	require.Len(t, errs, 2)
	assert.Equal(t, "facts[0].confidence", errs[0].Field)
	assert.Equal(t, models.CodeRequiredField, errs[0].Code)
	assert.Equal(t, "facts[1].confidence", errs[1].Field)
	assert.Equal(t, models.CodeRequiredField, errs[1].Code)

	_, err := NewMapper().MapValidated(facts[:1], []string{"Louis"})
	se, ok := models.AsStageError(err)
	require.True(t, ok)
	assert.Equal(t, models.StageMappingValidation, se.Stage)
}
