package mapping

import "speech_to_act/backend/go/internal/models"

// Result 是单个识别器的命中结果。
type Result struct {
	Domain     models.Domain
	Type       string
	Attributes map[string]interface{}
	Confidence float64
}

// Recognizer 检查事实序列中自己负责的维度，未命中时返回 nil。
type Recognizer func(facts []models.CanonicalFact) *Result

// DefaultRecognizers 返回固定优先级的识别器列表：
// 餐食、睡眠、尿布、活动、健康、行为、用药。
func DefaultRecognizers() []Recognizer {
	return []Recognizer{
		RecognizeMeal,
		RecognizeSleep,
		RecognizeDiaper,
		RecognizeActivity,
		RecognizeHealth,
		RecognizeBehavior,
		RecognizeMedication,
	}
}

// mealAttributes 把餐食维度映射到属性名。
var mealAttributes = map[models.Dimension]string{
	models.DimensionMealMainConsumption:      "main",
	models.DimensionMealDessertConsumption:   "dessert",
	models.DimensionMealVegetableConsumption: "vegetable",
	models.DimensionMealType:                 "mealType",
}

// RecognizeMeal 是唯一的多事实聚合识别器：合并所有餐食维度的取值，
// 置信度取参与聚合事实的算术平均值。同一维度出现多次时后者覆盖前者，但都计入平均。
func RecognizeMeal(facts []models.CanonicalFact) *Result {
	attributes := make(map[string]interface{})
	var total float64
	var n int
	for _, f := range facts {
		key, ok := mealAttributes[f.Dimension]
		if !ok {
			continue
		}
		attributes[key] = f.Value
		total += f.Confidence
		n++
	}
	if n == 0 {
		return nil
	}
	return &Result{
		Domain:     models.DomainMeal,
		Type:       models.TypeMealConsumption,
		Attributes: attributes,
		Confidence: total / float64(n),
	}
}

// single 构造只认领一个维度的识别器，取第一条匹配的事实，置信度原样透传。
func single(dim models.Dimension, domain models.Domain, intentType, attribute string) Recognizer {
	return func(facts []models.CanonicalFact) *Result {
		for _, f := range facts {
			if f.Dimension != dim {
				continue
			}
			return &Result{
				Domain:     domain,
				Type:       intentType,
				Attributes: map[string]interface{}{attribute: f.Value},
				Confidence: f.Confidence,
			}
		}
		return nil
	}
}

var (
	RecognizeSleep      = single(models.DimensionSleepState, models.DomainSleep, models.TypeSleepLog, "state")
	RecognizeDiaper     = single(models.DimensionDiaperChangeType, models.DomainDiaper, models.TypeDiaperChange, "changeType")
	RecognizeActivity   = single(models.DimensionActivityType, models.DomainActivity, models.TypeActivityLog, "activityType")
	RecognizeHealth     = single(models.DimensionHealthStatus, models.DomainHealth, models.TypeHealthObservation, "status")
	RecognizeBehavior   = single(models.DimensionChildMood, models.DomainBehavior, models.TypeBehaviorLog, "mood")
	RecognizeMedication = single(models.DimensionMedicationType, models.DomainMedication, models.TypeMedicationAdministration, "medicationType")
)
