package parser

import (
	"context"
	"regexp"
	"strings"

	"motelaudit-backend/internal/report/domain"
)

// Anchor patterns: each field is the first capture after a known label
// token, case-insensitively. A missing anchor leaves the field nil.
var (
	propertyNameRe = regexp.MustCompile(`(?i)DAILY\s+REPORT\s*(.*?)[\r\n]+`)
	departmentRe   = regexp.MustCompile(`(?i)Department:\s*([^\r\n]+)`)
	reportDateRe   = regexp.MustCompile(`(?i)Date\s*([0-9\.\-\/]+)`)
	revenueRe      = regexp.MustCompile(`(?i)Revenue\s*[\r\n]+\s*([\d\.,]+)`)
	adrRe          = regexp.MustCompile(`(?i)ADR\s*[\r\n]+\s*([\d\.,]+)`)
	occupancyRe    = regexp.MustCompile(`(?i)Occupancy\s*[\r\n]+\s*(\d+)`)
)

// RegexParser is the deterministic structuring strategy: pure, total, no
// external dependency. It never extracts line items, so the child
// collections are always empty.
type RegexParser struct{}

func NewRegexParser() *RegexParser {
	return &RegexParser{}
}

func (p *RegexParser) Parse(_ context.Context, text string, _ map[string]string) (*domain.ParsedReport, error) {
	report := domain.EmptyParsedReport()
	report.PropertyName = find(propertyNameRe, text)
	report.Department = find(departmentRe, text)
	report.ReportDate = find(reportDateRe, text)
	report.Revenue = find(revenueRe, text)
	report.ADR = find(adrRe, text)
	report.Occupancy = find(occupancyRe, text)
	return report, nil
}

func find(re *regexp.Regexp, text string) *domain.FlexString {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v := domain.FlexString(strings.TrimSpace(m[1]))
	return &v
}
