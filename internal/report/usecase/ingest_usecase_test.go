package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"motelaudit-backend/internal/report/domain"
	"motelaudit-backend/internal/report/repository"
	"motelaudit-backend/pkg/chroma"
	"motelaudit-backend/pkg/openai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Shared fakes for the usecase tests.

type fakeMail struct {
	emails  []*domain.InboundEmail
	scanned int
	err     error

	recentCalls   int
	sweepCalls int
}

func (f *fakeMail) FetchRecent(_ context.Context, _ int, _ string) ([]*domain.InboundEmail, int, error) {
	f.recentCalls++
	return f.emails, f.scanned, f.err
}

func (f *fakeMail) FetchAll(_ context.Context, _ int, _ string) ([]*domain.InboundEmail, int, error) {
	f.sweepCalls++
	return f.emails, f.scanned, f.err
}

type fakeExtractor struct {
	texts map[string]string // filename -> text
	errs  map[string]error
}

func (f *fakeExtractor) Extract(_ context.Context, att *domain.InboundAttachment) (*domain.ExtractedText, error) {
	if err := f.errs[att.Filename]; err != nil {
		return nil, err
	}
	return &domain.ExtractedText{Text: f.texts[att.Filename]}, nil
}

type fakeParser struct {
	calls int
}

func (f *fakeParser) Parse(_ context.Context, text string, _ map[string]string) (*domain.ParsedReport, error) {
	f.calls++
	report := domain.EmptyParsedReport()
	if text != "" {
		name := domain.FlexString("Parsed " + text)
		report.PropertyName = &name
	}
	return report, nil
}

type fakeReportRepo struct {
	nextID     uint
	created    []*domain.Report
	duplicates map[string]bool // property name -> treat as duplicate
	createErr  error
	all        []domain.Report
	listErr    error
}

func (f *fakeReportRepo) CreateFromParsed(parsed *domain.ParsedReport) (*domain.Report, bool, error) {
	if f.createErr != nil {
		return nil, false, f.createErr
	}
	name := parsed.PropertyName.Str()
	if f.duplicates[name] {
		return nil, false, nil
	}
	f.nextID++
	report := &domain.Report{
		ID:           f.nextID,
		PropertyName: name,
		Motel:        domain.Motel{ID: 1, MotelName: name},
	}
	f.created = append(f.created, report)
	return report, true, nil
}

func (f *fakeReportRepo) List(repository.ReportFilter) ([]domain.Report, int64, error) {
	return f.all, int64(len(f.all)), nil
}

func (f *fakeReportRepo) GetByID(id uint) (*domain.Report, error) {
	for i := range f.all {
		if f.all[i].ID == id {
			return &f.all[i], nil
		}
	}
	return nil, nil
}

func (f *fakeReportRepo) ListAllWithMotel() ([]domain.Report, error) {
	return f.all, f.listErr
}

type fakeRunRepo struct {
	saved []*domain.IngestRun
}

func (f *fakeRunRepo) Save(run *domain.IngestRun) error {
	f.saved = append(f.saved, run)
	return nil
}

func (f *fakeRunRepo) ListRecent(int) ([]domain.IngestRun, error) {
	runs := make([]domain.IngestRun, 0, len(f.saved))
	for _, r := range f.saved {
		runs = append(runs, *r)
	}
	return runs, nil
}

type fakeIndex struct {
	stored  map[string][]float32
	hasErr  error
	upErr   error
	queries int
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{stored: map[string][]float32{}}
}

func (f *fakeIndex) UpsertReport(_ context.Context, id string, vector []float32, _ map[string]any, _ string) error {
	if f.upErr != nil {
		return f.upErr
	}
	f.stored[id] = vector
	return nil
}

func (f *fakeIndex) Has(_ context.Context, id string) (bool, error) {
	if f.hasErr != nil {
		return false, f.hasErr
	}
	_, ok := f.stored[id]
	return ok, nil
}

func (f *fakeIndex) ExistingIDs(context.Context) (map[string]struct{}, error) {
	ids := make(map[string]struct{}, len(f.stored))
	for id := range f.stored {
		ids[id] = struct{}{}
	}
	return ids, nil
}

func (f *fakeIndex) Query(context.Context, []float32, int) ([]chroma.Match, error) {
	f.queries++
	return nil, nil
}

func (f *fakeIndex) Count(context.Context) (int, error) {
	return len(f.stored), nil
}

type fakeEmbedder struct {
	calls int
	err   error
}

func (f *fakeEmbedder) CreateEmbedding(_ context.Context, _, _ string) ([]float32, openai.Usage, error) {
	f.calls++
	if f.err != nil {
		return nil, openai.Usage{}, f.err
	}
	return []float32{0.1, 0.2, 0.3}, openai.Usage{PromptTokens: 42, TotalTokens: 42}, nil
}

type fakeUsage struct {
	records []string
}

func (f *fakeUsage) RecordUsage(model, operation string, _ openai.Usage) {
	f.records = append(f.records, model+"/"+operation)
}

func emailWith(msgID string, filenames ...string) *domain.InboundEmail {
	email := &domain.InboundEmail{MessageID: msgID, Subject: "Daily Report"}
	for _, fn := range filenames {
		email.Attachments = append(email.Attachments, domain.InboundAttachment{
			Filename: fn,
			MimeType: "application/pdf",
			Data:     []byte("%PDF"),
		})
	}
	return email
}

func TestIngestRunCountsAndPersists(t *testing.T) {
	mail := &fakeMail{
		emails:  []*domain.InboundEmail{emailWith("m1", "a.pdf"), emailWith("m2", "b.pdf")},
		scanned: 5,
	}
	extractor := &fakeExtractor{texts: map[string]string{"a.pdf": "alpha", "b.pdf": "beta"}}
	parser := &fakeParser{}
	reports := &fakeReportRepo{duplicates: map[string]bool{}}
	runs := &fakeRunRepo{}

	uc := NewIngestUsecase(mail, extractor, parser, reports, runs, nil, false)
	summary, err := uc.Run(context.Background(), IngestOptions{Mode: ModeRecent})
	require.NoError(t, err)

	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 5, summary.MessagesScanned)
	assert.Equal(t, 2, summary.MessagesAccepted)
	assert.Equal(t, 2, summary.DocumentsParsed)
	assert.Equal(t, 2, summary.ReportsCreated)
	assert.Zero(t, summary.DuplicatesSkipped)
	assert.Empty(t, summary.Errors)

	require.Len(t, runs.saved, 1)
	assert.Equal(t, summary.RunID, runs.saved[0].ID)
	assert.Equal(t, 2, runs.saved[0].ReportsCreated)
	assert.False(t, runs.saved[0].FinishedAt.Before(runs.saved[0].StartedAt))
}

func TestIngestRunModeAllUsesFullSweep(t *testing.T) {
	mail := &fakeMail{}
	uc := NewIngestUsecase(mail, &fakeExtractor{}, &fakeParser{}, &fakeReportRepo{}, &fakeRunRepo{}, nil, false)

	_, err := uc.Run(context.Background(), IngestOptions{Mode: ModeAll})
	require.NoError(t, err)
	assert.Equal(t, 1, mail.sweepCalls)
	assert.Zero(t, mail.recentCalls)
}

func TestIngestRunMailboxFailureIsFatal(t *testing.T) {
	mail := &fakeMail{err: errors.New("token expired")}
	runs := &fakeRunRepo{}
	uc := NewIngestUsecase(mail, &fakeExtractor{}, &fakeParser{}, &fakeReportRepo{}, runs, nil, false)

	_, err := uc.Run(context.Background(), IngestOptions{})
	require.Error(t, err)
	assert.Empty(t, runs.saved, "a run that never started scanning is not recorded")
}

func TestIngestRunDocumentFailureIsIsolated(t *testing.T) {
	mail := &fakeMail{
		emails:  []*domain.InboundEmail{emailWith("m1", "bad.pdf", "good.pdf")},
		scanned: 1,
	}
	extractor := &fakeExtractor{
		texts: map[string]string{"good.pdf": "good"},
		errs:  map[string]error{"bad.pdf": fmt.Errorf("unsupported attachment type")},
	}
	reports := &fakeReportRepo{}
	uc := NewIngestUsecase(mail, extractor, &fakeParser{}, reports, &fakeRunRepo{}, nil, false)

	summary, err := uc.Run(context.Background(), IngestOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.DocumentsParsed)
	assert.Equal(t, 1, summary.ReportsCreated)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "bad.pdf")
}

func TestIngestRunDuplicateSkipped(t *testing.T) {
	mail := &fakeMail{
		emails:  []*domain.InboundEmail{emailWith("m1", "a.pdf"), emailWith("m2", "a2.pdf")},
		scanned: 2,
	}
	extractor := &fakeExtractor{texts: map[string]string{"a.pdf": "same", "a2.pdf": "same"}}
	reports := &fakeReportRepo{duplicates: map[string]bool{}}

	// The first create succeeds; mark the name duplicate afterwards by
	// pre-seeding: both parse to "Parsed same", so flag it after one create.
	parser := &fakeParser{}
	uc := NewIngestUsecase(mail, extractor, &markDuplicateAfterFirst{repo: reports, parser: parser}, reports, &fakeRunRepo{}, nil, false)

	summary, err := uc.Run(context.Background(), IngestOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.DocumentsParsed)
	assert.Equal(t, 1, summary.ReportsCreated)
	assert.Equal(t, 1, summary.DuplicatesSkipped)
	assert.Empty(t, summary.Errors, "a duplicate is not an error")
}

// markDuplicateAfterFirst parses normally but flags the produced name as a
// duplicate once the first report exists, mimicking the database check.
type markDuplicateAfterFirst struct {
	repo   *fakeReportRepo
	parser *fakeParser
}

func (m *markDuplicateAfterFirst) Parse(ctx context.Context, text string, meta map[string]string) (*domain.ParsedReport, error) {
	report, err := m.parser.Parse(ctx, text, meta)
	if err != nil {
		return nil, err
	}
	name := report.PropertyName.Str()
	if len(m.repo.created) > 0 {
		m.repo.duplicates[name] = true
	}
	return report, nil
}

func TestIngestRunEmptyTextStillPersists(t *testing.T) {
	mail := &fakeMail{
		emails:  []*domain.InboundEmail{emailWith("m1", "scan.pdf")},
		scanned: 1,
	}
	extractor := &fakeExtractor{texts: map[string]string{}} // empty text recovered
	reports := &fakeReportRepo{}
	uc := NewIngestUsecase(mail, extractor, &fakeParser{}, reports, &fakeRunRepo{}, nil, false)

	summary, err := uc.Run(context.Background(), IngestOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.DocumentsParsed)
	assert.Equal(t, 1, summary.ReportsCreated)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "no text recovered")
}

func TestIngestRunInlineIndexing(t *testing.T) {
	mail := &fakeMail{
		emails:  []*domain.InboundEmail{emailWith("m1", "a.pdf")},
		scanned: 1,
	}
	extractor := &fakeExtractor{texts: map[string]string{"a.pdf": "alpha"}}
	reports := &fakeReportRepo{}
	index := newFakeIndex()
	embedder := &fakeEmbedder{}
	usage := &fakeUsage{}
	indexer := NewIndexUsecase(index, embedder, usage, reports, 10, 0)

	uc := NewIngestUsecase(mail, extractor, &fakeParser{}, reports, &fakeRunRepo{}, indexer, true)
	summary, err := uc.Run(context.Background(), IngestOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ReportsCreated)
	assert.Len(t, index.stored, 1)
	assert.Contains(t, usage.records, "text-embedding-3-small/embedding")
}

func TestIngestRunIndexFailureDoesNotUndoPersist(t *testing.T) {
	mail := &fakeMail{
		emails:  []*domain.InboundEmail{emailWith("m1", "a.pdf")},
		scanned: 1,
	}
	extractor := &fakeExtractor{texts: map[string]string{"a.pdf": "alpha"}}
	reports := &fakeReportRepo{}
	index := newFakeIndex()
	index.upErr = errors.New("collection unavailable")
	indexer := NewIndexUsecase(index, &fakeEmbedder{}, &fakeUsage{}, reports, 10, 0)

	uc := NewIngestUsecase(mail, extractor, &fakeParser{}, reports, &fakeRunRepo{}, indexer, true)
	summary, err := uc.Run(context.Background(), IngestOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ReportsCreated)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "index")
}
