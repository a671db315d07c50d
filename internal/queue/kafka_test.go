package queue

import (
	"testing"
)

func TestConsumerStats(t *testing.T) {
	consumer := NewConsumer([]string{"localhost:9092"}, "plantcare.alerts", "stats-group")
	defer consumer.Close()

	stats := consumer.Stats()
	if stats.Topic != "plantcare.alerts" {
		t.Errorf("Topic = %q, expected plantcare.alerts", stats.Topic)
	}
	if stats.Messages != 0 || stats.Bytes != 0 {
		t.Errorf("Fresh consumer reported Messages=%d, Bytes=%d", stats.Messages, stats.Bytes)
	}
}
