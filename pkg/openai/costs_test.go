package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateCostChatModel(t *testing.T) {
	// 1000 prompt + 1000 completion tokens of gpt-4o-mini
	cost := EstimateCost("gpt-4o-mini", 1000, 1000)
	assert.InDelta(t, 0.00015+0.0006, cost, 1e-9)
}

func TestEstimateCostEmbeddingModel(t *testing.T) {
	cost := EstimateCost("text-embedding-3-small", 500, 0)
	assert.InDelta(t, 0.00001, cost, 1e-9)
}

func TestEstimateCostUnknownModelIsZero(t *testing.T) {
	assert.Zero(t, EstimateCost("gpt-4.1-mini", 12345, 6789))
}

func TestEstimateCostRoundsToSixPlaces(t *testing.T) {
	// 1 prompt token of gpt-4o-mini is 0.00000015, which rounds to zero
	assert.Zero(t, EstimateCost("gpt-4o-mini", 1, 0))
	// 7 tokens round up to 0.000001
	assert.Equal(t, 0.000001, EstimateCost("gpt-4o-mini", 7, 0))
}

func TestEstimateCostZeroTokens(t *testing.T) {
	assert.Zero(t, EstimateCost("gpt-4o", 0, 0))
}
