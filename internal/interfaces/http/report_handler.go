package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bodegas-api/internal/application/reports"
)

// ReportHandler informes del jefe de bodega.
type ReportHandler struct {
	uc *reports.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *reports.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// Summary godoc
// @Summary      Informe general
// @Description  Productos por bodega, productos por editorial y tipo, últimos 10 movimientos.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReportSummaryDTO
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/reports/summary [get]
func (h *ReportHandler) Summary(c *fiber.Ctx) error {
	out, err := h.uc.Summary(c.UserContext(), actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Movements godoc
// @Summary      Informe de movimientos
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  false  "RFC3339 o AAAA-MM-DD"
// @Param        to    query  string  false  "RFC3339 o AAAA-MM-DD"
// @Success      200   {object}  dto.MovementReportDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/reports/movements [get]
func (h *ReportHandler) Movements(c *fiber.Ctx) error {
	from, err := timeQuery(c, "from", false)
	if err != nil {
		return err
	}
	to, err := timeQuery(c, "to", true)
	if err != nil {
		return err
	}
	out, err := h.uc.MovementReport(c.UserContext(), actorFrom(c), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// MovementsPDF godoc
// @Summary      Informe de movimientos en PDF
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Param        from  query  string  false  "RFC3339 o AAAA-MM-DD"
// @Param        to    query  string  false  "RFC3339 o AAAA-MM-DD"
// @Success      200   {file}    binary
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/reports/movements.pdf [get]
func (h *ReportHandler) MovementsPDF(c *fiber.Ctx) error {
	from, err := timeQuery(c, "from", false)
	if err != nil {
		return err
	}
	to, err := timeQuery(c, "to", true)
	if err != nil {
		return err
	}
	pdf, err := h.uc.MovementReportPDF(c.UserContext(), actorFrom(c), from, to)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="informe-movimientos.pdf"`)
	return c.Send(pdf)
}
