package domain

import "time"

// TokenUsage is one ledger row per billable model call. Rows are append-only.
type TokenUsage struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	Model            string    `json:"model" gorm:"index"`
	Operation        string    `json:"operation"` // "embedding" or "chat"
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	TotalTokens      int       `json:"total_tokens"`
	CostUSD          float64   `json:"cost_usd" gorm:"column:cost_usd"`
	CreatedAt        time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (TokenUsage) TableName() string {
	return "token_usage"
}
