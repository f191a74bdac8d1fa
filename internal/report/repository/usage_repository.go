package repository

import (
	"log"

	"motelaudit-backend/internal/report/domain"
	"motelaudit-backend/pkg/openai"

	"gorm.io/gorm"
)

// UsageSummary aggregates spend across the token ledger.
type UsageSummary struct {
	TotalTokens  int64               `json:"total_tokens"`
	TotalCostUSD float64             `json:"total_cost_usd"`
	ByModel      []ModelUsageSummary `json:"by_model"`
}

type ModelUsageSummary struct {
	Model            string  `json:"model"`
	Operation        string  `json:"operation"`
	Calls            int64   `json:"calls"`
	PromptTokens     int64   `json:"prompt_tokens"`
	CompletionTokens int64   `json:"completion_tokens"`
	TotalTokens      int64   `json:"total_tokens"`
	CostUSD          float64 `json:"cost_usd"`
}

// UsageRepository is the ledger sink for billable model calls. It satisfies
// openai.UsageRecorder so the client can meter every request it makes.
type UsageRepository interface {
	RecordUsage(model, operation string, usage openai.Usage)
	Summary() (*UsageSummary, error)
}

type usageRepository struct {
	db *gorm.DB
}

func NewUsageRepository(db *gorm.DB) UsageRepository {
	return &usageRepository{db: db}
}

// RecordUsage writes one ledger row per call. A failed insert never fails
// the operation that consumed the tokens; it is logged and dropped.
func (r *usageRepository) RecordUsage(model, operation string, usage openai.Usage) {
	row := domain.TokenUsage{
		Model:            model,
		Operation:        operation,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		TotalTokens:      usage.TotalTokens,
		CostUSD:          openai.EstimateCost(model, usage.PromptTokens, usage.CompletionTokens),
	}
	if err := r.db.Create(&row).Error; err != nil {
		log.Printf("[Usage] Failed to record usage for %s/%s: %v", model, operation, err)
	}
}

func (r *usageRepository) Summary() (*UsageSummary, error) {
	var rows []ModelUsageSummary
	err := r.db.Model(&domain.TokenUsage{}).
		Select("model, operation, COUNT(*) AS calls, SUM(prompt_tokens) AS prompt_tokens, SUM(completion_tokens) AS completion_tokens, SUM(total_tokens) AS total_tokens, SUM(cost_usd) AS cost_usd").
		Group("model, operation").
		Order("model, operation").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summary := &UsageSummary{ByModel: rows}
	for _, row := range rows {
		summary.TotalTokens += row.TotalTokens
		summary.TotalCostUSD += row.CostUSD
	}
	return summary, nil
}
