// Package contract 在契约被任何下游阶段信任之前做结构与语义校验。
package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"speech_to_act/backend/go/internal/models"
)

// Result 是一次校验的结果，当且仅当 Errors 为空时合法。
type Result struct {
	IsValid bool                     `json:"isValid"`
	Errors  []models.ValidationError `json:"errors"`
}

func (r *Result) add(field, code, message string) {
	r.Errors = append(r.Errors, models.ValidationError{Field: field, Message: message, Code: code})
}

// Validate 校验一个未经类型化的契约载荷。所有检查彼此独立，收集全部违规而不短路。
// 类型化的 IntentionContract 会先被规范化为 JSON 对象形式再校验。
func Validate(candidate interface{}) Result {
	res := Result{Errors: []models.ValidationError{}}

	obj, err := normalize(candidate)
	if err != nil {
		if errors.Is(err, errMissing) {
			res.add("contract", models.CodeMissingContract, "Contract is required")
		} else {
			res.add("contract", models.CodeInvalidType, "Contract must be an object")
		}
		return res
	}

	validateDomain(&res, obj)
	validateType(&res, obj)
	validateTargets(&res, obj)
	validateAttributes(&res, obj)
	validateMetadata(&res, obj)

	res.IsValid = len(res.Errors) == 0
	return res
}

var validDomainList = func() string {
	names := make([]string, len(models.AllDomains))
	for i, d := range models.AllDomains {
		names[i] = string(d)
	}
	return strings.Join(names, ", ")
}()

func validateDomain(res *Result, obj map[string]interface{}) {
	raw, ok := obj["domain"]
	if !ok || isEmpty(raw) {
		res.add("domain", models.CodeMissingDomain, "Domain is required")
		return
	}
	s, isString := raw.(string)
	if !isString || !models.Domain(s).IsValid() {
		res.add("domain", models.CodeInvalidDomain, "Invalid domain. Must be one of: "+validDomainList)
	}
}

func validateType(res *Result, obj map[string]interface{}) {
	raw, ok := obj["type"]
	if !ok || isEmpty(raw) {
		res.add("type", models.CodeMissingType, "Type is required")
		return
	}
	if _, isString := raw.(string); !isString {
		res.add("type", models.CodeInvalidType, "Type must be a string")
	}
}

func validateTargets(res *Result, obj map[string]interface{}) {
	raw, ok := obj["targets"]
	if !ok || raw == nil {
		res.add("targets", models.CodeMissingTargets, "Targets are required")
		return
	}
	switch targets := raw.(type) {
	case []string:
		if len(targets) == 0 {
			res.add("targets", models.CodeEmptyTargets, "At least one target is required")
		}
	case []interface{}:
		if len(targets) == 0 {
			res.add("targets", models.CodeEmptyTargets, "At least one target is required")
			return
		}
		for _, t := range targets {
			if _, isString := t.(string); !isString {
				res.add("targets", models.CodeInvalidTargetsFormat, "All targets must be strings")
				return
			}
		}
	default:
		res.add("targets", models.CodeInvalidTargetsFormat, "Targets must be an array")
	}
}

func validateAttributes(res *Result, obj map[string]interface{}) {
	raw, ok := obj["attributes"]
	if !ok || raw == nil {
		res.add("attributes", models.CodeMissingAttributes, "Attributes are required")
		return
	}
	if _, isObject := raw.(map[string]interface{}); !isObject {
		res.add("attributes", models.CodeInvalidAttributesFormat, "Attributes must be an object")
	}
}

func validateMetadata(res *Result, obj map[string]interface{}) {
	raw, ok := obj["metadata"]
	if !ok || raw == nil {
		return
	}
	meta, isObject := raw.(map[string]interface{})
	if !isObject {
		res.add("metadata", models.CodeInvalidType, "Metadata must be an object")
		return
	}
	conf, present := meta["confidence"]
	if !present || conf == nil {
		return
	}
	v, isNumber := toFloat(conf)
	if !isNumber || v < 0 || v > 1 {
		res.add("metadata.confidence", models.CodeInvalidConfidence, "Confidence must be a number between 0 and 1")
	}
}

// isEmpty 对应 JSON 中的 null 与空字符串。
func isEmpty(v interface{}) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

var errMissing = errors.New("missing contract")

// normalize 把候选载荷转换为 JSON 对象形式。
func normalize(candidate interface{}) (map[string]interface{}, error) {
	switch c := candidate.(type) {
	case nil:
		return nil, errMissing
	case map[string]interface{}:
		return c, nil
	case *models.IntentionContract:
		if c == nil {
			return nil, errMissing
		}
		return roundTrip(c)
	case models.IntentionContract:
		return roundTrip(c)
	case json.RawMessage:
		return decodeRaw(c)
	case []byte:
		return decodeRaw(c)
	default:
		return nil, fmt.Errorf("unsupported contract type %T", candidate)
	}
}

func roundTrip(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return decodeRaw(data)
}

func decodeRaw(data []byte) (map[string]interface{}, error) {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	if v == nil {
		return nil, errMissing
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("contract is %T, not an object", v)
	}
	return obj, nil
}

// Decode 把已通过校验的载荷转换为类型化的契约。
func Decode(candidate interface{}) (*models.IntentionContract, error) {
	switch c := candidate.(type) {
	case *models.IntentionContract:
		return c.Clone(), nil
	case models.IntentionContract:
		return c.Clone(), nil
	}
	obj, err := normalize(candidate)
	if err != nil {
		return nil, fmt.Errorf("无法解析契约: %w", err)
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("无法序列化契约: %w", err)
	}
	var out models.IntentionContract
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("无法解析契约: %w", err)
	}
	return &out, nil
}
