package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	managerUp := middleware.RequireRole(model.RoleAdmin, model.RoleManager)

	reports := router.Group("/api/reports")
	{
		reports.GET("/dashboard", managerUp, h.Dashboard)
		reports.GET("/summary", managerUp, h.Summary)
	}
}

// Dashboard returns today's trade, outstanding balances, and low stock
// @Summary      Dashboard
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.reportService.Dashboard(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, dashboard))
}

// Summary aggregates sales and purchases over a date range
// @Summary      Period summary
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Param        start_date  query  string  false  "Start date (YYYY-MM-DD, default today)"
// @Param        end_date    query  string  false  "End date (YYYY-MM-DD, default today)"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/reports/summary [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	summary, err := h.reportService.Summary(c.Request.Context(), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}
