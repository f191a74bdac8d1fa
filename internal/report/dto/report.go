package dto

import "motelaudit-backend/internal/report/domain"

type ReportsResponse struct {
	Reports []domain.Report `json:"reports"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
}

type MotelsResponse struct {
	Motels []domain.Motel `json:"motels"`
}

type IngestRunsResponse struct {
	Runs []domain.IngestRun `json:"runs"`
}

type ChatQueryRequest struct {
	Question string `json:"question" binding:"required"`
	TopK     int    `json:"top_k"`
}
