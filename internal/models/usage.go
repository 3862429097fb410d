package models

import (
	"time"

	"gorm.io/gorm"
)

// UsageRecord stores token usage and cost for one assistant turn
type UsageRecord struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	SessionID       string  `gorm:"index" json:"session_id"`
	RequestID       string  `gorm:"index" json:"request_id"`
	Provider        string  `gorm:"index" json:"provider"`
	Model           string  `gorm:"index" json:"model"`
	InputTokens     int     `json:"input_tokens"`
	OutputTokens    int     `json:"output_tokens"`
	ReasoningTokens int     `json:"reasoning_tokens"`
	TotalTokens     int     `json:"total_tokens"`
	CostUSD         float64 `json:"cost_usd"`
	DurationMs      int64   `json:"duration_ms"`
	Streamed        bool    `json:"streamed"`
}

// ActionLog stores one executed action and its outcome
type ActionLog struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	SessionID string `gorm:"index" json:"session_id"`
	RequestID string `gorm:"index" json:"request_id"`
	Kind      string `gorm:"index" json:"kind"`
	Params    string `gorm:"type:text" json:"params"` // JSON-encoded parameters
	Confirmed bool   `json:"confirmed"`
	Success   bool   `gorm:"index" json:"success"`
	Error     string `gorm:"type:text" json:"error,omitempty"`
}
