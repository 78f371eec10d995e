package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/piwi3910/cutdesk/internal/export"
	"github.com/piwi3910/cutdesk/internal/model"
	"github.com/piwi3910/cutdesk/internal/reorder"
	"github.com/piwi3910/cutdesk/internal/store"
	"go.uber.org/zap"
)

// Handler serves the register API over a Store and a reorder Engine.
type Handler struct {
	store   *store.Store
	reorder *reorder.Engine
	config  model.AppConfig
	log     *zap.Logger
	now     func() time.Time
}

// NewHandler returns a Handler. config supplies the store details printed
// on tickets and purchase orders.
func NewHandler(s *store.Store, engine *reorder.Engine, config model.AppConfig, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{store: s, reorder: engine, config: config, log: log, now: time.Now}
}

// Health handles GET /api/v1/health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "CutDesk API is running",
	})
}

// ─── Materials ─────────────────────────────────────────────

// ListMaterials handles GET /api/v1/materials
func (h *Handler) ListMaterials(c *gin.Context) {
	materials, err := h.store.Materials().List()
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, materials)
}

// CreateMaterial handles POST /api/v1/materials. A new id is assigned
// unless the body carries one.
func (h *Handler) CreateMaterial(c *gin.Context) {
	var m model.Material
	if err := c.ShouldBindJSON(&m); err != nil {
		badRequest(c, err)
		return
	}
	saved, err := h.store.Materials().Save(m)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusCreated, saved)
}

// UpdateMaterial handles PUT /api/v1/materials/:id
func (h *Handler) UpdateMaterial(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.store.Materials().Get(id); err != nil {
		writeError(c, err)
		return
	}
	var m model.Material
	if err := c.ShouldBindJSON(&m); err != nil {
		badRequest(c, err)
		return
	}
	m.ID = id
	saved, err := h.store.Materials().Save(m)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, saved)
}

// SetStockRequest is the body of PATCH /materials/:id/stock.
type SetStockRequest struct {
	CurrentStock *float64 `json:"currentStock" binding:"required"`
}

// SetStock handles PATCH /api/v1/materials/:id/stock
func (h *Handler) SetStock(c *gin.Context) {
	var req SetStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if *req.CurrentStock < 0 {
		writeError(c, model.NewValidationError("currentStock", "stock must not be negative"))
		return
	}
	id := c.Param("id")
	if err := h.store.Materials().SetStock(id, *req.CurrentStock); err != nil {
		writeError(c, err)
		return
	}
	m, err := h.store.Materials().Get(id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, m)
}

// ─── Pricing & quotes ──────────────────────────────────────

// GetPricing handles GET /api/v1/pricing
func (h *Handler) GetPricing(c *gin.Context) {
	cfg, err := h.store.Pricing().Get()
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, cfg)
}

// SetPricing handles PUT /api/v1/pricing
func (h *Handler) SetPricing(c *gin.Context) {
	var cfg model.PricingConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.store.Pricing().Set(cfg); err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, cfg)
}

// LengthInput is a length as entered at the register. Length, in feet,
// wins when set; otherwise feet and inches (imperial) or meters (metric)
// are converted.
type LengthInput struct {
	Length      float64 `json:"length"`
	Measurement string  `json:"measurement"`
	Feet        float64 `json:"feet"`
	Inches      float64 `json:"inches"`
	Meters      float64 `json:"meters"`
}

// InFeet returns the length in feet.
func (in LengthInput) InFeet() float64 {
	if in.Length != 0 {
		return in.Length
	}
	return model.ToFeet(model.ParseMeasurementSystem(in.Measurement), in.Feet, in.Inches, in.Meters)
}

// QuoteRequest is the body of POST /quote.
type QuoteRequest struct {
	MaterialID string `json:"materialId"`
	Quantity   int    `json:"quantity"`
	LengthInput
}

// QuoteResponse is the live price preview shown while the form is filled.
type QuoteResponse struct {
	LengthFeet  float64 `json:"lengthFeet"`
	TotalLength float64 `json:"totalLength"`
	model.CostBreakdown
}

// Quote handles POST /api/v1/quote. Incomplete input quotes zero rather
// than failing, as the preview updates on every keystroke.
func (h *Handler) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cfg, err := h.store.Pricing().Get()
	if err != nil {
		writeError(c, err)
		return
	}

	var material *model.Material
	if req.MaterialID != "" {
		m, err := h.store.Materials().Get(req.MaterialID)
		if err != nil {
			writeError(c, err)
			return
		}
		material = &m
	}

	feet := req.LengthInput.InFeet()
	resp := QuoteResponse{
		LengthFeet:    feet,
		CostBreakdown: model.Price(cfg, material, feet, req.Quantity),
	}
	if feet > 0 && req.Quantity > 0 {
		resp.TotalLength = feet * float64(req.Quantity)
	}
	respond(c, http.StatusOK, resp)
}

// ─── Jobs ──────────────────────────────────────────────────

// ListJobs handles GET /api/v1/jobs?q=&status=
func (h *Handler) ListJobs(c *gin.Context) {
	var status model.JobStatus
	if raw := c.Query("status"); raw != "" && raw != "all" {
		s, ok := model.ParseJobStatus(raw)
		if !ok {
			writeError(c, model.NewValidationError("status", "unknown status %q", raw))
			return
		}
		status = s
	}
	jobs, err := h.store.Jobs().Search(c.Query("q"), status)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, jobs)
}

// CreateJobBody is the body of POST /jobs.
type CreateJobBody struct {
	CustomerName string `json:"customerName"`
	MaterialID   string `json:"materialId"`
	Quantity     int    `json:"quantity"`
	Notes        string `json:"notes"`
	LengthInput
}

// CreateJob handles POST /api/v1/jobs
func (h *Handler) CreateJob(c *gin.Context) {
	var body CreateJobBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	job, err := h.store.Jobs().CreateJob(store.CreateJobRequest{
		CustomerName: body.CustomerName,
		MaterialID:   body.MaterialID,
		Length:       body.LengthInput.InFeet(),
		Quantity:     body.Quantity,
		Notes:        body.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusCreated, job)
}

// GetJob handles GET /api/v1/jobs/:id. A four character order code is
// accepted in place of the id.
func (h *Handler) GetJob(c *gin.Context) {
	job, err := h.lookupJob(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, job)
}

func (h *Handler) lookupJob(id string) (model.CutJob, error) {
	job, err := h.store.Jobs().Get(id)
	if err == nil || !model.IsOrderCode(strings.ToUpper(id)) {
		return job, err
	}
	return h.store.Jobs().FindByOrderCode(id)
}

// UpdateStatusRequest is the body of PATCH /jobs/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateJobStatus handles PATCH /api/v1/jobs/:id/status
func (h *Handler) UpdateJobStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	job, err := h.store.Jobs().UpdateStatus(c.Param("id"), model.JobStatus(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, job)
}

// JobTicket handles GET /api/v1/jobs/:id/ticket and returns the ticket PDF.
func (h *Handler) JobTicket(c *gin.Context) {
	job, err := h.lookupJob(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteTicket(&buf, job.Ticket(), h.config); err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="ticket-%s.pdf"`, job.OrderCode))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// ─── Alerts & dashboard ────────────────────────────────────

// Alerts handles GET /api/v1/alerts
func (h *Handler) Alerts(c *gin.Context) {
	alerts, err := h.reorder.Alerts()
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, alerts)
}

// Dashboard handles GET /api/v1/dashboard
func (h *Handler) Dashboard(c *gin.Context) {
	summary, err := h.store.Dashboard()
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, summary)
}

// ─── Purchase orders ───────────────────────────────────────

// PlanRequest selects the materials to plan. No ids plans every
// material currently alerting.
type PlanRequest struct {
	MaterialIDs []string `json:"materialIds"`
}

// PurchaseOrdersResponse carries planned orders and their grand total.
type PurchaseOrdersResponse struct {
	Orders     []model.SupplierOrder `json:"orders"`
	GrandTotal float64               `json:"grandTotal"`
}

func ordersResponse(orders []model.SupplierOrder) PurchaseOrdersResponse {
	return PurchaseOrdersResponse{Orders: orders, GrandTotal: model.GrandTotal(orders)}
}

// PlanPurchaseOrders handles POST /api/v1/purchase-orders/plan
func (h *Handler) PlanPurchaseOrders(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}
	var (
		orders []model.SupplierOrder
		err    error
	)
	if len(req.MaterialIDs) == 0 {
		orders, err = h.reorder.PlanAlerts()
	} else {
		orders, err = h.reorder.Plan(req.MaterialIDs)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, ordersResponse(orders))
}

// BulkReorderRequest is the body of POST /purchase-orders/bulk.
type BulkReorderRequest struct {
	MaterialIDs []string `json:"materialIds"`
	ManagerCode string   `json:"managerCode"`
}

// BulkReorder handles POST /api/v1/purchase-orders/bulk
func (h *Handler) BulkReorder(c *gin.Context) {
	var req BulkReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	orders, err := h.reorder.BulkReorder(req.MaterialIDs, req.ManagerCode)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, ordersResponse(orders))
}

// SetQuantityRequest adjusts one line of planned orders.
type SetQuantityRequest struct {
	Orders        []model.SupplierOrder `json:"orders" binding:"required"`
	SupplierIndex int                   `json:"supplierIndex"`
	ItemIndex     int                   `json:"itemIndex"`
	Quantity      float64               `json:"quantity"`
}

// SetOrderQuantity handles POST /api/v1/purchase-orders/quantity
func (h *Handler) SetOrderQuantity(c *gin.Context) {
	var req SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := model.SetOrderQuantity(req.Orders, req.SupplierIndex, req.ItemIndex, req.Quantity); err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, ordersResponse(req.Orders))
}

// ExportRequest is the body of POST /purchase-orders/export.
type ExportRequest struct {
	Orders []model.SupplierOrder `json:"orders" binding:"required"`
}

// ExportPurchaseOrders handles POST /api/v1/purchase-orders/export?format=pdf|xlsx
func (h *Handler) ExportPurchaseOrders(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if len(req.Orders) == 0 {
		writeError(c, model.NewValidationError("orders", "no purchase orders to export"))
		return
	}

	var buf bytes.Buffer
	stamp := h.now().Format("20060102-150405")
	switch format := strings.ToLower(c.DefaultQuery("format", "pdf")); format {
	case "pdf":
		if err := export.WritePurchaseOrdersPDF(&buf, req.Orders, h.config, h.now()); err != nil {
			writeError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="purchase-orders-%s.pdf"`, stamp))
		c.Data(http.StatusOK, "application/pdf", buf.Bytes())
	case "xlsx":
		if err := export.WritePurchaseOrdersXLSX(&buf, req.Orders); err != nil {
			writeError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="purchase-orders-%s.xlsx"`, stamp))
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	default:
		writeError(c, model.NewValidationError("format", "unknown export format %q", format))
	}
}
