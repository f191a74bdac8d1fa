package delivery

import (
	"net/http"
	"strconv"

	"motelaudit-backend/internal/report/domain"
	"motelaudit-backend/internal/report/dto"
	"motelaudit-backend/internal/report/repository"
	"motelaudit-backend/internal/report/usecase"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	ingestUsecase *usecase.IngestUsecase
	indexUsecase  *usecase.IndexUsecase // nil when the vector index is not configured
	reportRepo    repository.ReportRepository
	motelRepo     repository.MotelRepository
	usageRepo     repository.UsageRepository
	runRepo       repository.IngestRunRepository
}

func NewReportHandler(
	ingestUsecase *usecase.IngestUsecase,
	indexUsecase *usecase.IndexUsecase,
	reportRepo repository.ReportRepository,
	motelRepo repository.MotelRepository,
	usageRepo repository.UsageRepository,
	runRepo repository.IngestRunRepository,
) *ReportHandler {
	return &ReportHandler{
		ingestUsecase: ingestUsecase,
		indexUsecase:  indexUsecase,
		reportRepo:    reportRepo,
		motelRepo:     motelRepo,
		usageRepo:     usageRepo,
		runRepo:       runRepo,
	}
}

// Fetch triggers one ingestion run over the mailbox.
func (h *ReportHandler) Fetch(c *gin.Context) {
	opts := usecase.IngestOptions{
		Mode:   c.DefaultQuery("mode", usecase.ModeRecent),
		After:  c.Query("after"),
		Before: c.Query("before"),
	}
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			opts.Limit = parsed
		}
	}
	if v := c.Query("pages"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			opts.Pages = parsed
		}
	}

	summary, err := h.ingestUsecase.Run(c.Request.Context(), opts)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *ReportHandler) ListReports(c *gin.Context) {
	filter := repository.ReportFilter{
		Department: c.Query("department"),
		StartDate:  c.Query("start_date"),
		EndDate:    c.Query("end_date"),
		Page:       1,
		Limit:      20,
	}
	if v := c.Query("motel_id"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			filter.MotelID = uint(parsed)
		}
	}
	if v := c.Query("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			filter.Page = parsed
		}
	}
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			filter.Limit = parsed
		}
	}

	reports, total, err := h.reportRepo.List(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.ReportsResponse{
		Reports: reports,
		Total:   total,
		Page:    filter.Page,
		Limit:   filter.Limit,
	})
}

func (h *ReportHandler) GetReport(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return
	}

	report, err := h.reportRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// childReport loads a report for one of the child-collection endpoints,
// writing the error response itself when the report cannot be served.
func (h *ReportHandler) childReport(c *gin.Context) *domain.Report {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return nil
	}
	report, err := h.reportRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil
	}
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return nil
	}
	return report
}

func (h *ReportHandler) GetVacantDirtyRooms(c *gin.Context) {
	if report := h.childReport(c); report != nil {
		c.JSON(http.StatusOK, gin.H{"vacant_dirty_rooms": report.VacantDirtyRooms})
	}
}

func (h *ReportHandler) GetOutOfOrderRooms(c *gin.Context) {
	if report := h.childReport(c); report != nil {
		c.JSON(http.StatusOK, gin.H{"out_of_order_rooms": report.OutOfOrderRooms})
	}
}

func (h *ReportHandler) GetCompRooms(c *gin.Context) {
	if report := h.childReport(c); report != nil {
		c.JSON(http.StatusOK, gin.H{"comp_rooms": report.CompRooms})
	}
}

func (h *ReportHandler) GetIncidents(c *gin.Context) {
	if report := h.childReport(c); report != nil {
		c.JSON(http.StatusOK, gin.H{"incidents": report.Incidents})
	}
}

func (h *ReportHandler) ListMotels(c *gin.Context) {
	motels, err := h.motelRepo.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.MotelsResponse{Motels: motels})
}

func (h *ReportHandler) UsageSummary(c *gin.Context) {
	summary, err := h.usageRepo.Summary()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *ReportHandler) ListRuns(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	runs, err := h.runRepo.ListRecent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.IngestRunsResponse{Runs: runs})
}

// Reindex embeds every stored report not yet present in the vector index.
func (h *ReportHandler) Reindex(c *gin.Context) {
	if h.indexUsecase == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "vector index not configured"})
		return
	}
	summary, err := h.indexUsecase.ReindexAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}
