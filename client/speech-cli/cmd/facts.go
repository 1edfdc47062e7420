package cmd

import (
	"fmt"
	"strconv"
	"strings"
)

// fact is one classified observation in a process request.
type fact struct {
	Dimension  string  `json:"dimension"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// processRequest is the body of POST /api/process.
type processRequest struct {
	Facts    []fact   `json:"facts"`
	Targets  []string `json:"targets"`
	Workflow string   `json:"workflow,omitempty"`
}

// pendingIDRequest is the body of the confirm and reject endpoints.
type pendingIDRequest struct {
	PendingID string `json:"pending_id"`
}

// defaultConfidence applies when a --fact flag has no @confidence suffix.
const defaultConfidence = 1.0

// parseFact parses DIMENSION=VALUE[@CONFIDENCE].
func parseFact(s string) (fact, error) {
	dim, rest, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(dim) == "" {
		return fact{}, fmt.Errorf("invalid fact %q: expected DIMENSION=VALUE[@CONFIDENCE]", s)
	}

	value, confText, hasConf := strings.Cut(rest, "@")
	if strings.TrimSpace(value) == "" {
		return fact{}, fmt.Errorf("invalid fact %q: value is empty", s)
	}

	confidence := defaultConfidence
	if hasConf {
		c, err := strconv.ParseFloat(confText, 64)
		if err != nil {
			return fact{}, fmt.Errorf("invalid fact %q: bad confidence: %w", s, err)
		}
		confidence = c
	}

	return fact{
		Dimension:  strings.ToUpper(strings.TrimSpace(dim)),
		Value:      strings.ToUpper(strings.TrimSpace(value)),
		Confidence: confidence,
	}, nil
}

func parseFacts(raw []string) ([]fact, error) {
	facts := make([]fact, 0, len(raw))
	for _, r := range raw {
		f, err := parseFact(r)
		if err != nil {
			return nil, err
		}
		facts = append(facts, f)
	}
	return facts, nil
}
