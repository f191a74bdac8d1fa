package domain

import "time"

// IngestRun records the outcome of one ingestion pass over the mailbox.
type IngestRun struct {
	ID                string    `json:"id" gorm:"primaryKey"`
	Mode              string    `json:"mode"`
	MessagesScanned   int       `json:"messages_scanned"`
	MessagesAccepted  int       `json:"messages_accepted"`
	DocumentsParsed   int       `json:"documents_parsed"`
	ReportsCreated    int       `json:"reports_created"`
	DuplicatesSkipped int       `json:"duplicates_skipped"`
	Errors            string    `json:"errors" gorm:"type:text"`
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at"`
}

// TableName specifies the table name for GORM
func (IngestRun) TableName() string {
	return "ingest_runs"
}
