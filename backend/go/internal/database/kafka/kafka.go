package kafka

import (
	"fmt"

	"speech_to_act/backend/go/internal/config"

	"github.com/segmentio/kafka-go"
)

// Enabled 判断是否配置了 Kafka。未配置 broker 时不发布事件。
func Enabled(cfg *config.KafkaConfig) bool {
	return len(cfg.Brokers) > 0
}

// EnsureTopics 连接到第一个 broker，创建配置中尚不存在的主题，返回新建主题的名称。
func EnsureTopics(cfg *config.KafkaConfig, topics ...string) ([]string, error) {
	if !Enabled(cfg) {
		return nil, fmt.Errorf("未配置 Kafka brokers")
	}
	wanted := uniqueTopics(append(append([]string(nil), cfg.Topics...), topics...))
	if len(wanted) == 0 {
		return nil, nil
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers[0])
	if err != nil {
		return nil, fmt.Errorf("kafka 初始化连接失败: %w", err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions()
	if err != nil {
		return nil, fmt.Errorf("无法读取 Kafka 分区信息: %w", err)
	}
	existing := make(map[string]struct{}, len(partitions))
	for _, p := range partitions {
		existing[p.Topic] = struct{}{}
	}

	missing := MissingTopics(wanted, existing)
	if len(missing) == 0 {
		return nil, nil
	}
	configs := make([]kafka.TopicConfig, 0, len(missing))
	for _, name := range missing {
		configs = append(configs, kafka.TopicConfig{
			Topic:             name,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})
	}
	if err := conn.CreateTopics(configs...); err != nil {
		return nil, fmt.Errorf("自动创建 Kafka 主题失败: %w", err)
	}
	return missing, nil
}

// MissingTopics 返回 wanted 中不在 existing 里的主题，保持原有顺序。
func MissingTopics(wanted []string, existing map[string]struct{}) []string {
	var out []string
	for _, name := range wanted {
		if _, ok := existing[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}

func uniqueTopics(topics []string) []string {
	seen := make(map[string]struct{}, len(topics))
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
