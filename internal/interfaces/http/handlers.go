package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/bill-invoicing/internal/application/service"
	"github.com/garyjia/bill-invoicing/internal/domain/entity"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handlers contains all HTTP request handlers
type Handlers struct {
	billService      service.BillService
	invoicingService service.InvoicingService
	logger           Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(billService service.BillService, invoicingService service.InvoicingService, logger Logger) *Handlers {
	return &Handlers{
		billService:      billService,
		invoicingService: invoicingService,
		logger:           logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

func (h *Handlers) ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func (h *Handlers) badRequest(c *gin.Context, msg string, err error) {
	h.logger.Error(msg, "error", err, "path", c.Request.URL.Path)
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: msg})
}

// fail writes the error with its mapped status. Internal errors are not echoed to clients.
func (h *Handlers) fail(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "error", err, "path", c.Request.URL.Path)
		msg = "internal server error"
	}
	c.JSON(status, Response{Success: false, Error: msg})
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	h.ok(c, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	})
}

// ListBills handles GET /api/bills
func (h *Handlers) ListBills(c *gin.Context) {
	var req ListBillsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, "invalid query parameters", err)
		return
	}

	page, err := h.billService.ListBills(c.Request.Context(), service.BillQuery{
		Status:    req.Status,
		CycleFrom: req.CycleFrom,
		CycleTo:   req.CycleTo,
		Page:      req.Page,
		PageSize:  req.PageSize,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, page)
}

// GetBill handles GET /api/bills/:billNo
func (h *Handlers) GetBill(c *gin.Context) {
	bill, err := h.billService.GetBill(c.Request.Context(), c.Param("billNo"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, bill)
}

// ConfirmBill handles POST /api/bills/:billNo/confirm
func (h *Handlers) ConfirmBill(c *gin.Context) {
	bill, err := h.billService.ConfirmBill(c.Request.Context(), c.Param("billNo"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, bill)
}

// CancelConfirm handles POST /api/bills/:billNo/cancel-confirm
func (h *Handlers) CancelConfirm(c *gin.Context) {
	bill, err := h.billService.CancelConfirm(c.Request.Context(), c.Param("billNo"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, bill)
}

// ListOrders handles GET /api/bills/:billNo/orders
func (h *Handlers) ListOrders(c *gin.Context) {
	var req ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, "invalid query parameters", err)
		return
	}

	page, err := h.billService.ListOrders(c.Request.Context(), c.Param("billNo"), service.OrderQuery{
		BusinessType: entity.BusinessType(req.BusinessType),
		CheckStatus:  req.CheckStatus,
		Page:         req.Page,
		PageSize:     req.PageSize,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, page)
}

// UpdateOrderCheckStatus handles POST /api/bills/:billNo/orders/check-status
func (h *Handlers) UpdateOrderCheckStatus(c *gin.Context) {
	var req UpdateCheckStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	billNo := c.Param("billNo")
	n, err := h.billService.UpdateOrderCheckStatus(c.Request.Context(), billNo, req.OrderNos, req.CheckStatus)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, UpdateCheckStatusResponse{BillNo: billNo, CheckStatus: req.CheckStatus, UpdatedCount: n})
}

// ListInvoiceTitles handles GET /api/invoice-titles
func (h *Handlers) ListInvoiceTitles(c *gin.Context) {
	titles, err := h.invoicingService.ListInvoiceTitles(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, toTitleResponses(titles))
}

// GenerateInvoiceRows handles POST /api/bills/:billNo/invoice-rows
func (h *Handlers) GenerateInvoiceRows(c *gin.Context) {
	var req GenerateRowsRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(c, "invalid request body", err)
		return
	}

	table, err := h.invoicingService.GenerateInvoiceRows(c.Request.Context(), c.Param("billNo"), req.Keys())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, toTableResponse(table))
}

// GetInvoiceSummary handles GET /api/bills/:billNo/invoice-summary
func (h *Handlers) GetInvoiceSummary(c *gin.Context) {
	summary, err := h.invoicingService.GetInvoiceSummary(c.Request.Context(), c.Param("billNo"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, toSummaryResponse(summary))
}

// ApplyInvoice handles POST /api/bills/:billNo/invoice-applications
func (h *Handlers) ApplyInvoice(c *gin.Context) {
	var req ApplyInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	rows := make([]entity.InvoiceRow, 0, len(req.Rows))
	for _, r := range req.Rows {
		rows = append(rows, r.ToEntity())
	}

	result, err := h.invoicingService.ApplyInvoice(c.Request.Context(), service.ApplyRequest{
		BillNo:    c.Param("billNo"),
		Submitter: req.Submitter,
		Rows:      rows,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	h.ok(c, ApplyInvoiceResponse{
		Application: toApplicationResponse(result.Application),
		Summary:     toSummaryResponse(result.Summary),
		BillStatus:  result.BillStatus,
	})
}

// ListApplications handles GET /api/bills/:billNo/invoice-applications
func (h *Handlers) ListApplications(c *gin.Context) {
	apps, err := h.invoicingService.ListApplications(c.Request.Context(), c.Param("billNo"))
	if err != nil {
		h.fail(c, err)
		return
	}

	out := make([]ApplicationResponse, 0, len(apps))
	for _, a := range apps {
		out = append(out, toApplicationResponse(a))
	}
	h.ok(c, out)
}

// ExportInvoiceWorkbook handles GET /api/bills/:billNo/invoice-export?dimensions=a,b
func (h *Handlers) ExportInvoiceWorkbook(c *gin.Context) {
	billNo := c.Param("billNo")

	var dims []string
	if raw := c.Query("dimensions"); raw != "" {
		dims = strings.Split(raw, ",")
	}

	var buf bytes.Buffer
	if err := h.invoicingService.ExportInvoiceWorkbook(c.Request.Context(), billNo, dims, &buf); err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", billNo+"_invoices.xlsx"))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
