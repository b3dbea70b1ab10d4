package eventbus

import (
	"os"
	"strings"
)

// GetBrokers returns the Kafka bootstrap servers from
// KAFKA_BOOTSTRAP_SERVERS. Panics when unset so a misconfigured worker
// fails at startup rather than consuming nothing.
func GetBrokers() string {
	v := os.Getenv("KAFKA_BOOTSTRAP_SERVERS")
	if v == "" {
		panic("KAFKA_BOOTSTRAP_SERVERS environment variable is required")
	}
	return v
}

// GetGroupID returns the consumer group id from KAFKA_GROUP_ID.
func GetGroupID() string {
	v := os.Getenv("KAFKA_GROUP_ID")
	if v == "" {
		panic("KAFKA_GROUP_ID environment variable is required")
	}
	return v
}

// ReinjectorGroupID derives a per-topic consumer group for the retry
// reinjector, keeping its offsets separate from regular consumers and
// from reinjectors on other topics.
func ReinjectorGroupID(topic Topic) string {
	return GetGroupID() + "-retry-worker-" + strings.ReplaceAll(topic.Base(), ".", "-")
}
