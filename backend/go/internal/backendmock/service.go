// Package backendmock 是记录后端的模拟实现：只生成预览和提交回执，不持久化任何数据。
package backendmock

import (
	"fmt"
	"strings"
	"time"

	"speech_to_act/backend/go/internal/models"

	"github.com/google/uuid"
)

// LowConfidenceThreshold 低于该置信度的契约会在预览中带上警告。
const LowConfidenceThreshold = 0.7

const (
	warnLowConfidence = "Low confidence score - consider manual verification"
	warnMedication    = "Medication administration requires verification"
)

var entityTypes = map[models.Domain]string{
	models.DomainMeal:       "MealRecord",
	models.DomainSleep:      "SleepRecord",
	models.DomainDiaper:     "DiaperChangeRecord",
	models.DomainActivity:   "ActivityRecord",
	models.DomainHealth:     "HealthObservation",
	models.DomainBehavior:   "BehaviorLog",
	models.DomainMedication: "MedicationRecord",
}

// EntityType 返回业务域对应的记录类型，未知业务域返回 "Record"。
func EntityType(domain models.Domain) string {
	if t, ok := entityTypes[domain]; ok {
		return t
	}
	return "Record"
}

// Service 生成预览和模拟提交回执。
type Service struct {
	now   func() time.Time
	newID func() string
}

// NewService 创建模拟后端服务。
func NewService() *Service {
	return &Service{
		now:   time.Now,
		newID: func() string { return "mock-" + uuid.NewString() },
	}
}

// Preview 为契约生成一个 CREATE 实体的预览。
func (s *Service) Preview(c *models.IntentionContract) *models.PreviewPayload {
	changes := make(map[string]interface{}, len(c.Attributes)+1)
	for k, v := range c.Attributes {
		changes[k] = v
	}
	timestamp := models.FormatTime(s.now())
	if c.Metadata != nil && c.Metadata.Timestamp != "" {
		timestamp = c.Metadata.Timestamp
	}
	changes["timestamp"] = timestamp

	entity := models.AffectedEntity{
		EntityType: EntityType(c.Domain),
		Targets:    c.Targets,
		Operation:  models.OperationCreate,
		Changes:    changes,
	}

	var warnings []string
	if c.Metadata != nil && c.Metadata.Confidence != nil && *c.Metadata.Confidence < LowConfidenceThreshold {
		warnings = append(warnings, warnLowConfidence)
	}
	if c.Domain == models.DomainMedication {
		warnings = append(warnings, warnMedication)
	}

	return &models.PreviewPayload{
		AffectedEntities: []models.AffectedEntity{entity},
		Description:      fmt.Sprintf("Would create %s for %s", entity.EntityType, strings.Join(c.Targets, ", ")),
		Warnings:         warnings,
	}
}

// Commit 返回模拟提交的回执。
func (s *Service) Commit(c *models.IntentionContract) *models.CommitReceipt {
	return &models.CommitReceipt{
		Message:   fmt.Sprintf("Mock commit successful for %s - %s/%s", strings.Join(c.Targets, ", "), c.Domain, c.Type),
		MockID:    s.newID(),
		Timestamp: models.FormatTime(s.now()),
	}
}
