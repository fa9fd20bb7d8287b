package handlers

import (
	"libris/internal/adapters/persistence/repositories"
	"libris/internal/core/services"
	"libris/internal/pkg/logger"
	"libris/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BatchHandler triggers maintenance jobs on demand
type BatchHandler struct {
	batch services.Batch
	log   logger.Logger
}

// NewBatchHandler creates a new batch handler
func NewBatchHandler(batch services.Batch, log logger.Logger) *BatchHandler {
	return &BatchHandler{batch: batch, log: log}
}

// Run executes one maintenance job
// @Summary Run a maintenance job
// @Description Jobs: process_overdue_notifications, expire_memberships, cleanup_expired_reservations
// @Tags Batch
// @Produce json
// @Security BearerAuth
// @Param job path string true "Job name"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /batch/{job} [post]
func (h *BatchHandler) Run(c *fiber.Ctx) error {
	auth, err := authContext(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	job := repositories.BatchJob(c.Params("job"))
	if !job.Valid() {
		return response.BadRequest(c, "Unknown batch job")
	}

	result, err := h.batch.Run(c.UserContext(), auth, job)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return response.Success(c, "Batch job finished", result)
}

// DailyReportRequest optionally narrows the report to one branch
type DailyReportRequest struct {
	BranchID *int64 `json:"branch_id,omitempty"`
}

// DailyReport summarises today's circulation
// @Summary Generate the daily report
// @Tags Batch
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body DailyReportRequest false "Branch filter"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /batch/daily-report [post]
func (h *BatchHandler) DailyReport(c *fiber.Ctx) error {
	auth, err := authContext(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req DailyReportRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}
	if req.BranchID != nil {
		if err := requirePositive(idField("branch_id", *req.BranchID)); err != nil {
			return respondError(c, h.log, err)
		}
	}

	report, err := h.batch.DailyReport(c.UserContext(), auth, req.BranchID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return response.Success(c, "Daily report generated", report)
}
