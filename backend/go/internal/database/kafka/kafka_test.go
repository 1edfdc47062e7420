package kafka

import (
	"testing"

	"speech_to_act/backend/go/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestEnabled(t *testing.T) {
	assert.False(t, Enabled(&config.KafkaConfig{}))
	assert.True(t, Enabled(&config.KafkaConfig{Brokers: []string{"localhost:9092"}}))
}

func TestEnsureTopics_RequiresBrokers(t *testing.T) {
	_, err := EnsureTopics(&config.KafkaConfig{}, "intent_events")
	assert.Error(t, err)
}

func TestMissingTopics(t *testing.T) {
	existing := map[string]struct{}{"a": {}}
	assert.Equal(t, []string{"b", "c"}, MissingTopics([]string{"a", "b", "c"}, existing))
	assert.Empty(t, MissingTopics([]string{"a"}, existing))
}

func TestUniqueTopics(t *testing.T) {
	assert.Equal(t, []string{"x", "y"}, uniqueTopics([]string{"x", "", "y", "x"}))
}
