package testutil

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go/modules/kafka"
)

const kafkaImage = "confluentinc/confluent-local:7.6.1"

// StartKafka starts a single-node KRaft broker and returns its bootstrap
// addresses. The container is terminated when the test ends.
func StartKafka(ctx context.Context, t *testing.T) []string {
	t.Helper()

	ctr, err := kafka.Run(ctx, kafkaImage, kafka.WithClusterID("bib-directdebit-test"))
	if err != nil {
		t.Fatalf("failed to start kafka container: %v", err)
	}
	t.Cleanup(func() { terminate(t, "kafka", ctr) })

	brokers, err := ctr.Brokers(ctx)
	if err != nil {
		t.Fatalf("failed to get kafka brokers: %v", err)
	}
	return brokers
}
