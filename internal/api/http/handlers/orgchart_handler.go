package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/RorolRoro/tkg-site/internal/service"
)

// OrgChartHandler serves the staff roster view.
type OrgChartHandler struct {
	orgChart *service.OrgChartService
}

// NewOrgChartHandler constructs handler.
func NewOrgChartHandler(orgChartService *service.OrgChartService) *OrgChartHandler {
	return &OrgChartHandler{orgChart: orgChartService}
}

// Get GET /orgchart.
func (h *OrgChartHandler) Get(c *fiber.Ctx) error {
	chart, err := h.orgChart.Chart(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": chart})
}

// Refresh POST /api/orgchart/refresh. Admin only.
func (h *OrgChartHandler) Refresh(c *fiber.Ctx) error {
	chart, err := h.orgChart.Refresh(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": chart})
}
