package bm

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"waste-collect/internal/pickup-service/core/domain/model"
)

// Every routing key the adapter publishes must land in a queue the
// notification consumer reads, so the connect-time topology has to cover
// them all.
func TestTopologyCoversPublishedRoutingKeys(t *testing.T) {
	require.Contains(t, queueBindings, StatusQueue)
	require.Contains(t, queueBindings, SettlementQueue)

	statuses := []model.Status{
		model.StatusScheduled,
		model.StatusAssigned,
		model.StatusEnRoute,
		model.StatusArrived,
		model.StatusCollecting,
		model.StatusCompleted,
		model.StatusCancelled,
	}
	for _, status := range statuses {
		key := fmt.Sprintf("pickup.status.%s", status)
		require.True(t, topicMatch(queueBindings[StatusQueue], key),
			"status queue binding should match %s", key)
	}

	require.True(t, topicMatch(queueBindings[SettlementQueue], "pickup.settled"))
}

// topicMatch implements the AMQP topic-exchange rules for the subset used
// here: literal words plus the single-word wildcard.
func topicMatch(binding, key string) bool {
	bw := strings.Split(binding, ".")
	kw := strings.Split(key, ".")
	if len(bw) != len(kw) {
		return false
	}
	for i := range bw {
		if bw[i] == "*" {
			continue
		}
		if bw[i] != kw[i] {
			return false
		}
	}
	return true
}
