package mapping

import (
	"fmt"
	"strings"

	"speech_to_act/backend/go/internal/models"
)

// DimensionInfo 描述一个维度：含义、所属业务域和合法取值。
type DimensionInfo struct {
	Dimension   models.Dimension `json:"dimension"`
	Description string           `json:"description"`
	Domain      models.Domain    `json:"domain"`
	ValidValues []string         `json:"validValues"`
}

var consumptionLevels = []string{"NOTHING", "QUARTER", "HALF", "THREE_QUARTERS", "ALL"}

var dimensionTable = map[models.Dimension]DimensionInfo{
	models.DimensionMealMainConsumption: {
		Description: "How much of the main dish the child ate",
		Domain:      models.DomainMeal,
		ValidValues: consumptionLevels,
	},
	models.DimensionMealDessertConsumption: {
		Description: "How much dessert the child ate",
		Domain:      models.DomainMeal,
		ValidValues: consumptionLevels,
	},
	models.DimensionMealVegetableConsumption: {
		Description: "How much vegetables the child ate",
		Domain:      models.DomainMeal,
		ValidValues: consumptionLevels,
	},
	models.DimensionMealType: {
		Description: "Type of meal (breakfast, lunch, snack, dinner)",
		Domain:      models.DomainMeal,
		ValidValues: []string{"BREAKFAST", "LUNCH", "SNACK", "DINNER"},
	},
	models.DimensionSleepState: {
		Description: "Sleep-related state change",
		Domain:      models.DomainSleep,
		ValidValues: []string{"ASLEEP", "WOKE_UP", "RESTING", "REFUSED_SLEEP"},
	},
	models.DimensionDiaperChangeType: {
		Description: "Type of diaper change needed",
		Domain:      models.DomainDiaper,
		ValidValues: []string{"WET", "DIRTY", "BOTH", "DRY"},
	},
	models.DimensionActivityType: {
		Description: "Type of activity the child participated in",
		Domain:      models.DomainActivity,
		ValidValues: []string{"OUTDOOR_PLAY", "INDOOR_PLAY", "CRAFT", "READING", "MUSIC", "MOTOR_SKILLS", "FREE_PLAY"},
	},
	models.DimensionChildMood: {
		Description: "Current mood or emotional state of the child",
		Domain:      models.DomainBehavior,
		ValidValues: []string{"HAPPY", "CALM", "TIRED", "UPSET", "EXCITED", "CRANKY"},
	},
	models.DimensionHealthStatus: {
		Description: "Health observation or symptom",
		Domain:      models.DomainHealth,
		ValidValues: []string{"HEALTHY", "FEVER", "COUGH", "RUNNY_NOSE", "RASH", "VOMITING", "DIARRHEA"},
	},
	models.DimensionMedicationType: {
		Description: "Type of medication administered",
		Domain:      models.DomainMedication,
		ValidValues: []string{"PAIN_RELIEVER", "ANTIBIOTIC", "ALLERGY", "VITAMIN", "OTHER"},
	},
}

// Dimensions 按固定顺序返回全部维度的描述。
func Dimensions() []DimensionInfo {
	out := make([]DimensionInfo, 0, len(models.AllDimensions))
	for _, dim := range models.AllDimensions {
		info := dimensionTable[dim]
		info.Dimension = dim
		info.ValidValues = append([]string(nil), info.ValidValues...)
		out = append(out, info)
	}
	return out
}

// LookupDimension 返回某个维度的描述；未知维度返回 false。
func LookupDimension(dim models.Dimension) (DimensionInfo, bool) {
	info, ok := dimensionTable[dim]
	if !ok {
		return DimensionInfo{}, false
	}
	info.Dimension = dim
	return info, true
}

// Schema 是提供给上游分类器的完整映射 schema。
type Schema struct {
	Domains             []models.Domain   `json:"domains"`
	Dimensions          []DimensionInfo   `json:"dimensions"`
	CanonicalFactSchema map[string]string `json:"canonicalFactSchema"`
}

// GetSchema 构建映射 schema。
func GetSchema() Schema {
	return Schema{
		Domains:    append([]models.Domain(nil), models.AllDomains...),
		Dimensions: Dimensions(),
		CanonicalFactSchema: map[string]string{
			"dimension":  "One of the valid dimension values",
			"value":      "One of the valid values for the chosen dimension",
			"confidence": "Number between 0 and 1 indicating classification confidence",
		},
	}
}

// ClassifierPrompt 生成交给上游分类器的提示词片段。
func ClassifierPrompt() string {
	var b strings.Builder
	b.WriteString("You must classify the user input into one of the following dimensions:\n\n")
	for _, dim := range Dimensions() {
		fmt.Fprintf(&b, "## %s\n", dim.Dimension)
		fmt.Fprintf(&b, "Description: %s\n", dim.Description)
		fmt.Fprintf(&b, "Domain: %s\n", dim.Domain)
		fmt.Fprintf(&b, "Valid values: %s\n\n", strings.Join(dim.ValidValues, ", "))
	}
	b.WriteString("\nOutput format (JSON):\n")
	b.WriteString(`{
  "facts": [
    {
      "dimension": "<DIMENSION>",
      "value": "<VALUE>",
      "confidence": <0.0-1.0>
    }
  ],
  "targets": ["<child_name>", ...]
}
`)
	return b.String()
}
