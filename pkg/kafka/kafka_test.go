package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pkg/logger"
)

func TestParseBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, ParseBrokers(" a:9092, ,b:9092 "))
	assert.Empty(t, ParseBrokers(""))
}

func TestNewPublisher_RequiresBrokers(t *testing.T) {
	_, err := NewPublisher(nil, "orders.events", logger.New("test", "debug"))
	require.Error(t, err)

	p, err := NewPublisher([]string{"localhost:9092"}, "orders.events", logger.New("test", "debug"))
	require.NoError(t, err)
	assert.Equal(t, "orders.events", p.writer.Topic)
}
