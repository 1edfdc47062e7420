package models

// Domain 是意图契约所属的业务域，取值为封闭集合。
type Domain string

const (
	DomainMeal       Domain = "MEAL"
	DomainSleep      Domain = "SLEEP"
	DomainDiaper     Domain = "DIAPER"
	DomainActivity   Domain = "ACTIVITY"
	DomainHealth     Domain = "HEALTH"
	DomainBehavior   Domain = "BEHAVIOR"
	DomainMedication Domain = "MEDICATION"
)

// AllDomains 列出全部合法的业务域。
var AllDomains = []Domain{
	DomainMeal,
	DomainSleep,
	DomainDiaper,
	DomainActivity,
	DomainHealth,
	DomainBehavior,
	DomainMedication,
}

// IsValid 判断 d 是否属于合法业务域。
func (d Domain) IsValid() bool {
	for _, known := range AllDomains {
		if d == known {
			return true
		}
	}
	return false
}

// 意图类型，与业务域一一对应。
const (
	TypeMealConsumption          = "MEAL_CONSUMPTION"
	TypeSleepLog                 = "SLEEP_LOG"
	TypeDiaperChange             = "DIAPER_CHANGE"
	TypeActivityLog              = "ACTIVITY_LOG"
	TypeHealthObservation        = "HEALTH_OBSERVATION"
	TypeBehaviorLog              = "BEHAVIOR_LOG"
	TypeMedicationAdministration = "MEDICATION_ADMINISTRATION"
)

// ContractMetadata 记录契约的生成时间、置信度和来源。
type ContractMetadata struct {
	Timestamp  string   `json:"timestamp,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
	Source     string   `json:"source,omitempty"`
}

// IntentionContract 是映射器产出的结构化意图，由 Mapper 创建一次后不再修改。
// 确认和提交都基于存储的副本，而不是重新推导。
type IntentionContract struct {
	Domain     Domain                 `json:"domain"`
	Type       string                 `json:"type"`
	Targets    []string               `json:"targets"`    // 儿童姓名，非空
	Attributes map[string]interface{} `json:"attributes"` // 语义属性
	Metadata   *ContractMetadata      `json:"metadata,omitempty"`
}

// Summary 返回契约的简要视图，用于提交回执和拒绝确认。
func (c *IntentionContract) Summary() ContractSummary {
	return ContractSummary{Domain: c.Domain, Type: c.Type, Targets: c.Targets}
}

// Clone 返回契约的深拷贝，存储层用它隔离调用方的修改。
func (c *IntentionContract) Clone() *IntentionContract {
	if c == nil {
		return nil
	}
	out := &IntentionContract{
		Domain:  c.Domain,
		Type:    c.Type,
		Targets: append([]string(nil), c.Targets...),
	}
	if c.Attributes != nil {
		out.Attributes = make(map[string]interface{}, len(c.Attributes))
		for k, v := range c.Attributes {
			out.Attributes[k] = v
		}
	}
	if c.Metadata != nil {
		meta := *c.Metadata
		if c.Metadata.Confidence != nil {
			conf := *c.Metadata.Confidence
			meta.Confidence = &conf
		}
		out.Metadata = &meta
	}
	return out
}

// ContractSummary 是契约的 domain/type/targets 三元组。
type ContractSummary struct {
	Domain  Domain   `json:"domain"`
	Type    string   `json:"type"`
	Targets []string `json:"targets"`
}
