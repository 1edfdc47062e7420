package models

import "encoding/json"

// Dimension 是上游分类器为一条事实打上的固定类别。
type Dimension string

const (
	DimensionMealMainConsumption      Dimension = "MEAL_MAIN_CONSUMPTION"
	DimensionMealDessertConsumption   Dimension = "MEAL_DESSERT_CONSUMPTION"
	DimensionMealVegetableConsumption Dimension = "MEAL_VEGETABLE_CONSUMPTION"
	DimensionMealType                 Dimension = "MEAL_TYPE"
	DimensionSleepState               Dimension = "SLEEP_STATE"
	DimensionDiaperChangeType         Dimension = "DIAPER_CHANGE_TYPE"
	DimensionActivityType             Dimension = "ACTIVITY_TYPE"
	DimensionChildMood                Dimension = "CHILD_MOOD"
	DimensionHealthStatus             Dimension = "HEALTH_STATUS"
	DimensionMedicationType           Dimension = "MEDICATION_TYPE"
)

// AllDimensions 按照 schema 输出顺序列出全部维度。
var AllDimensions = []Dimension{
	DimensionMealMainConsumption,
	DimensionMealDessertConsumption,
	DimensionMealVegetableConsumption,
	DimensionMealType,
	DimensionSleepState,
	DimensionDiaperChangeType,
	DimensionActivityType,
	DimensionChildMood,
	DimensionHealthStatus,
	DimensionMedicationType,
}

// CanonicalFact 是上游分类器产出的一条已分类观察。
// 一个请求携带有序的事实序列；顺序只影响餐食属性的聚合。
type CanonicalFact struct {
	Dimension  Dimension `json:"dimension"`
	Value      string    `json:"value"`
	Confidence float64   `json:"confidence"` // 分类置信度，取值 [0,1]

	confidenceMissing bool
}

// UnmarshalJSON 记录 confidence 是否出现；缺失或为 null 时 HasConfidence 返回 false。
func (f *CanonicalFact) UnmarshalJSON(data []byte) error {
	type plain CanonicalFact
	var raw struct {
		plain
		Confidence *float64 `json:"confidence"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = CanonicalFact(raw.plain)
	if raw.Confidence == nil {
		f.confidenceMissing = true
	} else {
		f.Confidence = *raw.Confidence
	}
	return nil
}

// HasConfidence 报告事实是否携带了置信度。直接构造的事实总是视为携带。
func (f CanonicalFact) HasConfidence() bool {
	return !f.confidenceMissing
}
