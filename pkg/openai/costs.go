package openai

import "math"

// Approximate per-1K-token prices in USD (Oct 2025). Models not listed cost
// nothing; the ledger still records their token counts.
var tokenCosts = map[string]struct{ input, output float64 }{
	"gpt-4o-mini":            {input: 0.00015, output: 0.0006},
	"gpt-4o":                 {input: 0.005, output: 0.015},
	"text-embedding-3-small": {input: 0.00002, output: 0.0},
}

// EstimateCost computes the USD cost of one call, rounded to 6 decimal
// places. Embeddings have a zero output rate.
func EstimateCost(model string, promptTokens, completionTokens int) float64 {
	rates := tokenCosts[model]
	cost := float64(promptTokens)/1000*rates.input + float64(completionTokens)/1000*rates.output
	return math.Round(cost*1e6) / 1e6
}
