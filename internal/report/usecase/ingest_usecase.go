package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"motelaudit-backend/internal/report/domain"
	"motelaudit-backend/internal/report/parser"
	"motelaudit-backend/internal/report/repository"
	"motelaudit-backend/pkg/gmail"

	"github.com/google/uuid"
)

const (
	ModeRecent = "recent"
	ModeAll    = "all"

	defaultRecentLimit = 10
	defaultSweepPages  = 20
)

// IngestOptions controls one run over the mailbox.
type IngestOptions struct {
	Mode   string
	Limit  int    // recent mode: max messages from the first page
	Pages  int    // backfill mode: max listing pages
	After  string // optional YYYY/MM/DD bounds passed to the provider
	Before string
}

// RunSummary reports what a single ingestion pass did. Per-document failures
// land in Errors; they never abort the run.
type RunSummary struct {
	RunID             string   `json:"run_id"`
	Mode              string   `json:"mode"`
	MessagesScanned   int      `json:"messages_scanned"`
	MessagesAccepted  int      `json:"messages_accepted"`
	DocumentsParsed   int      `json:"documents_parsed"`
	ReportsCreated    int      `json:"reports_created"`
	DuplicatesSkipped int      `json:"duplicates_skipped"`
	Errors            []string `json:"errors"`
}

// IngestUsecase drives the mailbox-to-database pipeline: fetch, extract,
// structure, persist, and optionally index each new report inline.
type IngestUsecase struct {
	mail          MailSource
	extractor     TextExtractor
	parser        parser.Parser
	reports       repository.ReportRepository
	runs          repository.IngestRunRepository
	indexer       *IndexUsecase // nil when the vector index is not configured
	indexOnIngest bool
}

func NewIngestUsecase(
	mail MailSource,
	extractor TextExtractor,
	p parser.Parser,
	reports repository.ReportRepository,
	runs repository.IngestRunRepository,
	indexer *IndexUsecase,
	indexOnIngest bool,
) *IngestUsecase {
	return &IngestUsecase{
		mail:          mail,
		extractor:     extractor,
		parser:        p,
		reports:       reports,
		runs:          runs,
		indexer:       indexer,
		indexOnIngest: indexOnIngest,
	}
}

// Run executes one ingestion pass. It fails only when the mailbox itself is
// unreachable; everything downstream degrades per document.
func (u *IngestUsecase) Run(ctx context.Context, opts IngestOptions) (*RunSummary, error) {
	startedAt := time.Now()
	summary := &RunSummary{
		RunID:  uuid.NewString(),
		Mode:   opts.Mode,
		Errors: []string{},
	}
	if summary.Mode == "" {
		summary.Mode = ModeRecent
	}

	query := gmail.DateRangeQuery(opts.After, opts.Before)

	var emails []*domain.InboundEmail
	var scanned int
	var err error
	switch summary.Mode {
	case ModeAll:
		pages := opts.Pages
		if pages < 1 {
			pages = defaultSweepPages
		}
		emails, scanned, err = u.mail.FetchAll(ctx, pages, query)
	default:
		limit := opts.Limit
		if limit < 1 {
			limit = defaultRecentLimit
		}
		emails, scanned, err = u.mail.FetchRecent(ctx, limit, query)
	}
	if err != nil {
		return nil, fmt.Errorf("mailbox fetch failed: %w", err)
	}

	summary.MessagesScanned = scanned
	summary.MessagesAccepted = len(emails)
	log.Printf("[Ingest] Run %s: %d/%d messages accepted", summary.RunID, len(emails), scanned)

	for _, email := range emails {
		for i := range email.Attachments {
			u.processAttachment(ctx, email, &email.Attachments[i], summary)
		}
	}

	u.saveRun(summary, startedAt)
	return summary, nil
}

// processAttachment runs one document through extraction, structuring, and
// persistence. Failures are recorded on the summary and the loop moves on.
func (u *IngestUsecase) processAttachment(ctx context.Context, email *domain.InboundEmail, att *domain.InboundAttachment, summary *RunSummary) {
	extracted, err := u.extractor.Extract(ctx, att)
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("%s/%s: %v", email.MessageID, att.Filename, err))
		log.Printf("[Ingest] Extraction failed for %s (%s): %v", att.Filename, email.MessageID, err)
		return
	}
	if extracted.Text == "" {
		// Parsing an empty document still yields a valid empty report,
		// which is persisted so the message is accounted for.
		summary.Errors = append(summary.Errors, fmt.Sprintf("%s/%s: no text recovered", email.MessageID, att.Filename))
		log.Printf("[Ingest] No text recovered from %s (%s)", att.Filename, email.MessageID)
	}

	parsed, err := u.parser.Parse(ctx, extracted.Text, map[string]string{
		"subject":  email.Subject,
		"from":     email.From,
		"filename": att.Filename,
	})
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("%s/%s: parse: %v", email.MessageID, att.Filename, err))
		return
	}
	summary.DocumentsParsed++

	report, created, err := u.reports.CreateFromParsed(parsed)
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("%s/%s: persist: %v", email.MessageID, att.Filename, err))
		log.Printf("[Ingest] Persist failed for %s: %v", att.Filename, err)
		return
	}
	if !created {
		summary.DuplicatesSkipped++
		log.Printf("[Ingest] Duplicate report skipped for %s", att.Filename)
		return
	}
	summary.ReportsCreated++

	if u.indexOnIngest && u.indexer != nil {
		if err := u.indexer.IndexReport(ctx, report); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("report %d: index: %v", report.ID, err))
			log.Printf("[Ingest] Indexing failed for report %d: %v", report.ID, err)
		}
	}
}

func (u *IngestUsecase) saveRun(summary *RunSummary, startedAt time.Time) {
	run := &domain.IngestRun{
		ID:                summary.RunID,
		Mode:              summary.Mode,
		MessagesScanned:   summary.MessagesScanned,
		MessagesAccepted:  summary.MessagesAccepted,
		DocumentsParsed:   summary.DocumentsParsed,
		ReportsCreated:    summary.ReportsCreated,
		DuplicatesSkipped: summary.DuplicatesSkipped,
		Errors:            strings.Join(summary.Errors, "; "),
		StartedAt:         startedAt,
		FinishedAt:        time.Now(),
	}
	if err := u.runs.Save(run); err != nil {
		log.Printf("[Ingest] Failed to save run record %s: %v", summary.RunID, err)
	}
}
