package repository

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"motelaudit-backend/internal/report/domain"

	"gorm.io/gorm"
)

// Name used when a document yields no identifiable property. The report is
// still recorded (sparse reports are valid), and every report must belong
// to a motel.
const unknownPropertyName = "Unknown Property"

var errDuplicateReport = errors.New("duplicate report")

// ReportFilter narrows report listings.
type ReportFilter struct {
	MotelID    uint
	Department string
	StartDate  string // YYYY-MM-DD
	EndDate    string // YYYY-MM-DD
	Page       int
	Limit      int
}

// ReportRepository persists parsed reports and serves read queries.
type ReportRepository interface {
	// CreateFromParsed resolves or creates the motel and writes the
	// report row plus its child collections in one transaction. Returns
	// created=false when an equivalent report already exists.
	CreateFromParsed(parsed *domain.ParsedReport) (report *domain.Report, created bool, err error)
	List(filter ReportFilter) ([]domain.Report, int64, error)
	GetByID(id uint) (*domain.Report, error)
	// ListAllWithMotel returns every report with its motel preloaded,
	// for reindex sweeps.
	ListAllWithMotel() ([]domain.Report, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) CreateFromParsed(parsed *domain.ParsedReport) (*domain.Report, bool, error) {
	name := parsed.PropertyName.Str()
	if name == "" {
		name = unknownPropertyName
	}

	var report *domain.Report
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var motel domain.Motel
		err := tx.Where("motel_name = ?", name).First(&motel).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			motel = domain.Motel{MotelName: name}
			if err := tx.Create(&motel).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		date := parseReportDate(parsed.ReportDate.Str())
		dept := strOrNil(parsed.Department)

		// Re-running over an overlapping message range must not pile up
		// duplicate rows for the same motel/date/department.
		q := tx.Model(&domain.Report{}).Where("motel_id = ?", motel.ID)
		q = whereNullable(q, "report_date", dateValue(date))
		q = whereNullable(q, "department", dept)
		var count int64
		if err := q.Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errDuplicateReport
		}

		report = buildReportRow(motel.ID, parsed, date)
		if err := tx.Create(report).Error; err != nil {
			return err
		}
		// The caller indexes the returned report, so the association must
		// carry the persisted motel, not a zero value.
		report.Motel = motel
		return nil
	})

	if errors.Is(err, errDuplicateReport) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return report, true, nil
}

func (r *reportRepository) List(filter ReportFilter) ([]domain.Report, int64, error) {
	q := r.db.Model(&domain.Report{})
	if filter.MotelID != 0 {
		q = q.Where("motel_id = ?", filter.MotelID)
	}
	if filter.Department != "" {
		q = q.Where("department = ?", filter.Department)
	}
	if filter.StartDate != "" {
		q = q.Where("report_date >= ?", filter.StartDate)
	}
	if filter.EndDate != "" {
		q = q.Where("report_date <= ?", filter.EndDate)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}

	var reports []domain.Report
	err := q.Preload("Motel").
		Order("report_date DESC NULLS LAST, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&reports).Error
	if err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (r *reportRepository) GetByID(id uint) (*domain.Report, error) {
	var report domain.Report
	err := r.db.Preload("Motel").
		Preload("VacantDirtyRooms").
		Preload("OutOfOrderRooms").
		Preload("CompRooms").
		Preload("Incidents").
		First(&report, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) ListAllWithMotel() ([]domain.Report, error) {
	var reports []domain.Report
	if err := r.db.Preload("Motel").Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

// buildReportRow converts the parsed shape into a persistable row. Numeric
// strings are converted here, not during structuring; unparseable values
// fall back to the column defaults.
func buildReportRow(motelID uint, p *domain.ParsedReport, date *time.Time) *domain.Report {
	report := &domain.Report{
		MotelID:                motelID,
		PropertyName:           p.PropertyName.Str(),
		ReportDate:             date,
		Department:             strOrNil(p.Department),
		Auditor:                strOrNil(p.Auditor),
		Revenue:                toFloat(p.Revenue),
		ADR:                    toFloat(p.ADR),
		Occupancy:              toInt(p.Occupancy),
		VacantClean:            toInt(p.VacantClean),
		VacantDirty:            toInt(p.VacantDirty),
		OutOfOrderStorageRooms: toInt(p.OutOfOrderRoomsStorage),
	}

	for _, room := range p.VacantDirtyRooms {
		report.VacantDirtyRooms = append(report.VacantDirtyRooms, domain.VacantDirtyRoom{
			RoomNumber: room.RoomNumber.Str(),
			Reason:     room.Reason.Str(),
			Days:       toIntValue(room.Days),
			Action:     room.Action.Str(),
		})
	}
	for _, room := range p.OutOfOrderRooms {
		report.OutOfOrderRooms = append(report.OutOfOrderRooms, domain.OutOfOrderRoom{
			RoomNumber: room.RoomNumber.Str(),
			Reason:     room.Reason.Str(),
			Days:       toIntValue(room.Days),
			Action:     room.Action.Str(),
		})
	}
	for _, room := range p.CompRooms {
		report.CompRooms = append(report.CompRooms, domain.CompRoom{
			RoomNumber: room.RoomNumber.Str(),
			Notes:      room.Notes.Str(),
		})
	}
	for _, incident := range p.Incidents {
		report.Incidents = append(report.Incidents, domain.Incident{
			Description: incident.Description.Str(),
		})
	}
	return report
}

var dateLayouts = []string{
	"2006-01-02",
	"01.02.06",
	"01.02.2006",
	"01/02/2006",
	"01/02/06",
	"2006/01/02",
	"January 2, 2006",
}

func parseReportDate(v string) *time.Time {
	if v == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	return nil
}

func strOrNil(f *domain.FlexString) *string {
	s := f.Str()
	if s == "" {
		return nil
	}
	return &s
}

func toFloat(f *domain.FlexString) float64 {
	s := strings.ReplaceAll(f.Str(), ",", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func toInt(f *domain.FlexString) int {
	s := strings.ReplaceAll(f.Str(), ",", "")
	if s == "" {
		return 0
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return int(v)
	}
	return 0
}

func toIntValue(f domain.FlexString) int {
	return toInt(&f)
}

func dateValue(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

func whereNullable(q *gorm.DB, column string, value *string) *gorm.DB {
	if value == nil {
		return q.Where(column + " IS NULL")
	}
	return q.Where(column+" = ?", *value)
}
