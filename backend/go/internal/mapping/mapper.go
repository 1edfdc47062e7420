// Package mapping 把已分类的事实确定性地映射为意图契约，不涉及任何语言理解。
package mapping

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"speech_to_act/backend/go/internal/models"
)

// Source 写入契约元数据，标识契约由确定性映射生成。
const Source = "deterministic-mapping"

var (
	// ErrEmptyFacts 表示调用方没有提供任何事实。
	ErrEmptyFacts = errors.New("cannot map empty facts array")
	// ErrEmptyTargets 表示调用方没有提供任何儿童姓名。
	ErrEmptyTargets = errors.New("cannot map without targets (child names)")
)

// UnmatchedError 表示没有任何识别器认领这组事实。
type UnmatchedError struct {
	Dimensions []models.Dimension
}

func (e *UnmatchedError) Error() string {
	names := make([]string, len(e.Dimensions))
	for i, d := range e.Dimensions {
		names[i] = string(d)
	}
	return "no mapping found for dimensions: " + strings.Join(names, ", ")
}

// Mapper 按固定优先级依次尝试各业务域的识别器，返回第一个命中的结果。
type Mapper struct {
	recognizers []Recognizer
	now         func() time.Time
}

// Option 配置 Mapper。
type Option func(*Mapper)

// WithClock 替换生成时间戳所用的时钟。
func WithClock(now func() time.Time) Option {
	return func(m *Mapper) { m.now = now }
}

// NewMapper 创建使用默认识别器顺序的 Mapper。
func NewMapper(opts ...Option) *Mapper {
	m := &Mapper{
		recognizers: DefaultRecognizers(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Map 把事实映射为唯一的意图契约。除 metadata.timestamp 外，相同输入总是得到相同输出。
func (m *Mapper) Map(facts []models.CanonicalFact, targets []string) (*models.IntentionContract, error) {
	if len(facts) == 0 {
		return nil, ErrEmptyFacts
	}
	if len(targets) == 0 {
		return nil, ErrEmptyTargets
	}

	for _, recognize := range m.recognizers {
		result := recognize(facts)
		if result == nil {
			continue
		}
		confidence := result.Confidence
		return &models.IntentionContract{
			Domain:     result.Domain,
			Type:       result.Type,
			Targets:    append([]string(nil), targets...),
			Attributes: result.Attributes,
			Metadata: &models.ContractMetadata{
				Timestamp:  models.FormatTime(m.now()),
				Confidence: &confidence,
				Source:     Source,
			},
		}, nil
	}

	dims := make([]models.Dimension, len(facts))
	for i, f := range facts {
		dims[i] = f.Dimension
	}
	return nil, &UnmatchedError{Dimensions: dims}
}

// ValidateFacts 检查每条事实都有维度、取值以及 [0,1] 区间内的置信度，
// 作为映射前的前置校验。返回空切片表示全部合法。
func ValidateFacts(facts []models.CanonicalFact) []models.ValidationError {
	if len(facts) == 0 {
		return []models.ValidationError{{
			Field:   "facts",
			Message: "facts array is required and must not be empty",
			Code:    models.CodeEmptyArray,
		}}
	}

	var errs []models.ValidationError
	for i, f := range facts {
		prefix := fmt.Sprintf("facts[%d]", i)
		if strings.TrimSpace(string(f.Dimension)) == "" {
			errs = append(errs, models.ValidationError{
				Field:   prefix + ".dimension",
				Message: "Dimension is required",
				Code:    models.CodeRequiredField,
			})
		}
		if strings.TrimSpace(f.Value) == "" {
			errs = append(errs, models.ValidationError{
				Field:   prefix + ".value",
				Message: "Value is required",
				Code:    models.CodeRequiredField,
			})
		}
		if !f.HasConfidence() {
			errs = append(errs, models.ValidationError{
				Field:   prefix + ".confidence",
				Message: "Confidence is required",
				Code:    models.CodeRequiredField,
			})
		} else if math.IsNaN(f.Confidence) || f.Confidence < 0 || f.Confidence > 1 {
			errs = append(errs, models.ValidationError{
				Field:   prefix + ".confidence",
				Message: "Confidence must be a number between 0 and 1",
				Code:    models.CodeInvalidValue,
			})
		}
	}
	return errs
}

// CheckInput 检查事实和目标均非空，失败时返回 input_validation 阶段的 400 错误。
func CheckInput(facts []models.CanonicalFact, targets []string) error {
	if len(facts) == 0 {
		return models.InputError(models.StageInputValidation, "facts array is required and must not be empty",
			models.ValidationError{Field: "facts", Message: "facts must not be empty", Code: models.CodeEmptyArray})
	}
	if len(targets) == 0 {
		return models.InputError(models.StageInputValidation, "targets array is required and must not be empty",
			models.ValidationError{Field: "targets", Message: "targets must not be empty", Code: models.CodeEmptyArray})
	}
	return nil
}

// MapValidated 先检查输入和事实，再执行映射。失败时返回带阶段标签的错误：
// 空输入为 input_validation，事实非法为 mapping_validation，无法映射为 mapping，均为 400。
func (m *Mapper) MapValidated(facts []models.CanonicalFact, targets []string) (*models.IntentionContract, error) {
	if err := CheckInput(facts, targets); err != nil {
		return nil, err
	}
	if errs := ValidateFacts(facts); len(errs) > 0 {
		return nil, models.InputError(models.StageMappingValidation,
			"Invalid facts: each fact must have dimension, value, and confidence (0-1)", errs...)
	}
	contract, err := m.Map(facts, targets)
	if err != nil {
		return nil, &models.StageError{
			Stage:   models.StageMapping,
			Status:  http.StatusBadRequest,
			Message: "Mapping failed: " + err.Error(),
			Err:     err,
		}
	}
	return contract, nil
}
