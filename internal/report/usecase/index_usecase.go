package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"motelaudit-backend/internal/report/domain"
	"motelaudit-backend/internal/report/repository"
	"motelaudit-backend/pkg/openai"
)

const (
	embeddingModel     = "text-embedding-3-small"
	indexKeyPrefix     = "report-"
	metadataContentCap = 4000
)

// ReindexSummary reports one full sweep over stored reports.
type ReindexSummary struct {
	TotalReports   int `json:"total_reports"`
	AlreadyIndexed int `json:"already_indexed"`
	Processed      int `json:"processed"`
	Failed         int `json:"failed"`
}

// IndexUsecase embeds reports and maintains the vector index. Every
// embedding call is metered through the usage recorder.
type IndexUsecase struct {
	index    VectorIndex
	embedder Embedder
	usage    openai.UsageRecorder
	reports  repository.ReportRepository

	batchSize  int
	batchDelay time.Duration
}

func NewIndexUsecase(index VectorIndex, embedder Embedder, usage openai.UsageRecorder, reports repository.ReportRepository, batchSize int, batchDelay time.Duration) *IndexUsecase {
	if batchSize < 1 {
		batchSize = 10
	}
	return &IndexUsecase{
		index:      index,
		embedder:   embedder,
		usage:      usage,
		reports:    reports,
		batchSize:  batchSize,
		batchDelay: batchDelay,
	}
}

// IndexKey is the stable vector-store identity of a report.
func IndexKey(reportID uint) string {
	return fmt.Sprintf("%s%d", indexKeyPrefix, reportID)
}

// IndexReport embeds one report and upserts it. Already-indexed reports are
// skipped, which makes the call idempotent.
func (u *IndexUsecase) IndexReport(ctx context.Context, report *domain.Report) error {
	key := IndexKey(report.ID)

	exists, err := u.index.Has(ctx, key)
	if err != nil {
		return fmt.Errorf("index lookup for %s: %w", key, err)
	}
	if exists {
		return nil
	}

	text := buildReportText(report)
	vector, usage, err := u.embedder.CreateEmbedding(ctx, embeddingModel, text)
	if err != nil {
		return fmt.Errorf("embedding for %s: %w", key, err)
	}
	u.usage.RecordUsage(embeddingModel, "embedding", usage)

	if err := u.index.UpsertReport(ctx, key, vector, reportMetadata(report, text), text); err != nil {
		return fmt.Errorf("upsert for %s: %w", key, err)
	}
	return nil
}

// ReindexAll sweeps every stored report into the index, skipping those
// already present. Failures are logged and counted, never fatal. The sweep
// pauses between batches to stay under provider rate limits.
func (u *IndexUsecase) ReindexAll(ctx context.Context) (*ReindexSummary, error) {
	reports, err := u.reports.ListAllWithMotel()
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}

	existing, err := u.index.ExistingIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing indexed ids: %w", err)
	}

	summary := &ReindexSummary{TotalReports: len(reports)}
	inBatch := 0
	for i := range reports {
		report := &reports[i]
		key := IndexKey(report.ID)
		if _, ok := existing[key]; ok {
			summary.AlreadyIndexed++
			continue
		}

		if err := u.indexFresh(ctx, report, key); err != nil {
			summary.Failed++
			log.Printf("[Index] Failed to index report %d: %v", report.ID, err)
			continue
		}
		summary.Processed++

		inBatch++
		if inBatch >= u.batchSize {
			inBatch = 0
			if u.batchDelay > 0 {
				time.Sleep(u.batchDelay)
			}
		}
	}

	log.Printf("[Index] Reindex done: %d processed, %d already indexed, %d failed of %d",
		summary.Processed, summary.AlreadyIndexed, summary.Failed, summary.TotalReports)
	return summary, nil
}

// indexFresh embeds and upserts without re-checking Has; the caller already
// consulted the existing-ID snapshot.
func (u *IndexUsecase) indexFresh(ctx context.Context, report *domain.Report, key string) error {
	text := buildReportText(report)
	vector, usage, err := u.embedder.CreateEmbedding(ctx, embeddingModel, text)
	if err != nil {
		return err
	}
	u.usage.RecordUsage(embeddingModel, "embedding", usage)
	return u.index.UpsertReport(ctx, key, vector, reportMetadata(report, text), text)
}

// buildReportText renders the report as the text block that gets embedded.
func buildReportText(report *domain.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Motel: %s\n", report.Motel.MotelName)
	if report.Motel.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", report.Motel.Location)
	}
	if report.ReportDate != nil {
		fmt.Fprintf(&b, "Date: %s\n", report.ReportDate.Format("2006-01-02"))
	}
	if report.Department != nil {
		fmt.Fprintf(&b, "Department: %s\n", *report.Department)
	}
	if report.Auditor != nil {
		fmt.Fprintf(&b, "Auditor: %s\n", *report.Auditor)
	}
	fmt.Fprintf(&b, "Revenue: %.2f\n", report.Revenue)
	fmt.Fprintf(&b, "ADR: %.2f\n", report.ADR)
	fmt.Fprintf(&b, "Occupancy: %d\n", report.Occupancy)
	fmt.Fprintf(&b, "Vacant clean: %d, vacant dirty: %d, out of order/storage: %d\n",
		report.VacantClean, report.VacantDirty, report.OutOfOrderStorageRooms)

	if len(report.VacantDirtyRooms) > 0 {
		b.WriteString("Vacant dirty rooms:\n")
		for _, room := range report.VacantDirtyRooms {
			fmt.Fprintf(&b, "- Room %s: %s (%d days) %s\n", room.RoomNumber, room.Reason, room.Days, room.Action)
		}
	}
	if len(report.OutOfOrderRooms) > 0 {
		b.WriteString("Out of order rooms:\n")
		for _, room := range report.OutOfOrderRooms {
			fmt.Fprintf(&b, "- Room %s: %s (%d days) %s\n", room.RoomNumber, room.Reason, room.Days, room.Action)
		}
	}
	if len(report.CompRooms) > 0 {
		b.WriteString("Comp rooms:\n")
		for _, room := range report.CompRooms {
			fmt.Fprintf(&b, "- Room %s: %s\n", room.RoomNumber, room.Notes)
		}
	}
	if len(report.Incidents) > 0 {
		b.WriteString("Incidents:\n")
		for _, incident := range report.Incidents {
			fmt.Fprintf(&b, "- %s\n", incident.Description)
		}
	}
	return b.String()
}

func reportMetadata(report *domain.Report, text string) map[string]any {
	meta := map[string]any{
		"motel_name": report.Motel.MotelName,
		"location":   report.Motel.Location,
		"content":    truncate(text, metadataContentCap),
	}
	if report.ReportDate != nil {
		meta["report_date"] = report.ReportDate.Format("2006-01-02")
	}
	if report.Department != nil {
		meta["department"] = *report.Department
	}
	if report.Auditor != nil {
		meta["auditor"] = *report.Auditor
	}
	return meta
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
