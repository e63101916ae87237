package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducerWithoutBrokers(t *testing.T) {
	// A misconfigured broker list must not crash startup; delivery
	// failures surface through the completion callback instead.
	p := NewProducer(nil, "clicks")
	require.NotNil(t, p)
	assert.NotNil(t, p.writer.Completion)
	p.Close()
}
