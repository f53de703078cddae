package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Cnbkrtl/salesv2render-deneme/internal/models"
	"github.com/Cnbkrtl/salesv2render-deneme/internal/services"
)

// syncJob tracks one asynchronous ingestion run. Only one sync runs at a
// time; the ingest service serializes internally, but the handler refuses
// to queue a second run so the caller sees an honest 409.
type syncJob struct {
	Kind      string                 `json:"kind"`
	Running   bool                   `json:"running"`
	StartedAt time.Time              `json:"started_at"`
	EndedAt   *time.Time             `json:"ended_at,omitempty"`
	Request   services.IngestRequest `json:"request"`
	Result    *services.IngestResult `json:"result,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

type APIHandler struct {
	db        *gorm.DB
	ingest    *services.IngestService
	analytics *services.AnalyticsService
	scheduler *services.SyncScheduler

	jobMu sync.Mutex
	job   *syncJob
}

// SetupRoutes registers all pipeline routes on the group.
func SetupRoutes(r *gin.RouterGroup, db *gorm.DB, ingest *services.IngestService, analytics *services.AnalyticsService, scheduler *services.SyncScheduler) *APIHandler {
	handler := &APIHandler{
		db:        db,
		ingest:    ingest,
		analytics: analytics,
		scheduler: scheduler,
	}

	syncGroup := r.Group("/sync")
	{
		syncGroup.POST("/orders", handler.StartOrderSync)
		syncGroup.POST("/products", handler.StartProductSync)
		syncGroup.POST("/trendyol", handler.StartTrendyolSync)
		syncGroup.GET("/status", handler.SyncStatus)
	}

	analyticsGroup := r.Group("/analytics")
	{
		analyticsGroup.GET("", handler.GetAnalytics)
		analyticsGroup.GET("/report", handler.DownloadReport)
	}

	schedulerGroup := r.Group("/scheduler")
	{
		schedulerGroup.GET("/status", handler.SchedulerStatus)
		schedulerGroup.POST("/pause", handler.PauseScheduler)
		schedulerGroup.POST("/resume", handler.ResumeScheduler)
	}

	return handler
}

// StartOrderSync launches an asynchronous order ingestion for a range.
func (h *APIHandler) StartOrderSync(c *gin.Context) {
	var req services.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.StartDate == "" || req.EndDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date and end_date are required"})
		return
	}

	h.startJob(c, "orders", req, func(ctx context.Context) (*services.IngestResult, error) {
		return h.ingest.IngestOrders(ctx, req)
	})
}

// StartTrendyolSync ingests shipment packages straight from the seller API.
func (h *APIHandler) StartTrendyolSync(c *gin.Context) {
	var req services.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.StartDate == "" || req.EndDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date and end_date are required"})
		return
	}

	h.startJob(c, "trendyol", req, func(ctx context.Context) (*services.IngestResult, error) {
		return h.ingest.IngestTrendyolPackages(ctx, req.StartDate, req.EndDate)
	})
}

// StartProductSync runs a catalog sync synchronously; it is bounded by
// max_pages and typically finishes in under a minute.
func (h *APIHandler) StartProductSync(c *gin.Context) {
	var req struct {
		MaxPages int `json:"max_pages"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	result, err := h.ingest.SyncProducts(c.Request.Context(), req.MaxPages)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "category": services.ErrorCategory(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// SyncStatus reports the last or current async job.
func (h *APIHandler) SyncStatus(c *gin.Context) {
	h.jobMu.Lock()
	defer h.jobMu.Unlock()
	if h.job == nil {
		c.JSON(http.StatusOK, gin.H{"job": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": h.job})
}

func (h *APIHandler) startJob(c *gin.Context, kind string, req services.IngestRequest, run func(context.Context) (*services.IngestResult, error)) {
	h.jobMu.Lock()
	if h.job != nil && h.job.Running {
		job := h.job
		h.jobMu.Unlock()
		c.JSON(http.StatusConflict, gin.H{"error": "a sync is already running", "job": job})
		return
	}
	job := &syncJob{Kind: kind, Running: true, StartedAt: time.Now(), Request: req}
	h.job = job
	h.jobMu.Unlock()

	go func() {
		// jobs outlive the HTTP request that started them
		result, err := run(context.Background())
		ended := time.Now()
		h.jobMu.Lock()
		job.Running = false
		job.EndedAt = &ended
		job.Result = result
		if err != nil {
			job.Error = err.Error()
		}
		h.jobMu.Unlock()
	}()

	c.JSON(http.StatusAccepted, gin.H{"message": "sync started", "job": job})
}

// GetAnalytics computes the aggregation for a period.
func (h *APIHandler) GetAnalytics(c *gin.Context) {
	req, ok := h.bindAggregateRequest(c)
	if !ok {
		return
	}
	result, err := h.analytics.Aggregate(req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// DownloadReport streams the aggregation as an xlsx workbook.
func (h *APIHandler) DownloadReport(c *gin.Context) {
	req, ok := h.bindAggregateRequest(c)
	if !ok {
		return
	}
	result, err := h.analytics.Aggregate(req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	buf, err := services.ExportReport(result)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	filename := fmt.Sprintf("sales_report_%s_%s.xlsx", req.StartDate, req.EndDate)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}

func (h *APIHandler) bindAggregateRequest(c *gin.Context) (services.AggregateRequest, bool) {
	var req services.AggregateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query: " + err.Error()})
		return req, false
	}
	if req.StartDate == "" || req.EndDate == "" {
		// default to the current month
		now := time.Now()
		req.StartDate = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format("2006-01-02")
		req.EndDate = now.Format("2006-01-02")
	}
	if req.Marketplace != "" {
		normalized, _ := models.NormalizeMarketplace(req.Marketplace)
		req.Marketplace = normalized
	}
	return req, true
}

// SchedulerStatus reports the background scheduler state.
func (h *APIHandler) SchedulerStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.scheduler.Status())
}

// PauseScheduler gates scheduled and running syncs at the next batch.
func (h *APIHandler) PauseScheduler(c *gin.Context) {
	h.scheduler.Pause()
	c.JSON(http.StatusOK, gin.H{"message": "scheduler paused"})
}

// ResumeScheduler releases the gate.
func (h *APIHandler) ResumeScheduler(c *gin.Context) {
	h.scheduler.Resume()
	c.JSON(http.StatusOK, gin.H{"message": "scheduler resumed"})
}
