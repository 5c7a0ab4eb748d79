package config

// KafkaConfig contains queue transport configuration.
type KafkaConfig struct {
	// Brokers is the Kafka bootstrap server list.
	Brokers []string `env:"BROKERS" envDefault:"localhost:9092"`

	// ModerationTopic carries new task notifications to workers.
	ModerationTopic string `env:"MODERATION_TOPIC" envDefault:"moderation"`

	// DLQTopic receives terminal failures after retries are exhausted.
	DLQTopic string `env:"DLQ_TOPIC" envDefault:"moderation_dlq"`

	// GroupID is the worker consumer group. All worker processes share it
	// so partitions are spread across them.
	GroupID string `env:"GROUP_ID" envDefault:"moderation_workers"`
}

// Sanitize applies guardrails to Kafka configuration values.
func (k *KafkaConfig) Sanitize() {
	if k.ModerationTopic == "" {
		k.ModerationTopic = "moderation"
	}
	if k.DLQTopic == "" {
		k.DLQTopic = "moderation_dlq"
	}
	if k.GroupID == "" {
		k.GroupID = "moderation_workers"
	}
}
