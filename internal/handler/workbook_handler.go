package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/inventory_workbook/internal/service"
	"github.com/locvowork/inventory_workbook/pkg/invexcel"
)

// WorkbookHandler serves the inventory workbook over HTTP.
type WorkbookHandler struct {
	svc *service.ReportService
	def *invexcel.ReportDefinition
}

// NewWorkbookHandler creates a new WorkbookHandler bound to a report
// definition.
func NewWorkbookHandler(svc *service.ReportService, def *invexcel.ReportDefinition) *WorkbookHandler {
	return &WorkbookHandler{svc: svc, def: def}
}

// ExportHandler builds the workbook and streams it as an attachment.
func (h *WorkbookHandler) ExportHandler(c echo.Context) error {
	data, err := h.svc.ReportBytes(c.Request().Context(), h.def)
	if err != nil {
		if errors.Is(err, invexcel.ErrNoSheetData) {
			return responseError(c, http.StatusNotFound, "No data available for the report", nil)
		}
		return responseError(c, http.StatusInternalServerError, "Failed to generate excel file", err)
	}

	filename := fmt.Sprintf("inventory-%s.xlsx", time.Now().Format("20060102"))

	c.Response().Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Response().Header().Set("Content-Transfer-Encoding", "binary")

	_, err = c.Response().Write(data)
	return err
}

// HealthHandler reports service liveness.
func (h *WorkbookHandler) HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
