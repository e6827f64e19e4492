package http

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/garyjia/bill-invoicing/internal/application/service"
	"github.com/garyjia/bill-invoicing/internal/domain/entity"
	"github.com/garyjia/bill-invoicing/pkg/utils"
)

// ListBillsRequest represents query parameters for listing bills
type ListBillsRequest struct {
	Status    string `form:"status"`
	CycleFrom string `form:"cycle_from"`
	CycleTo   string `form:"cycle_to"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
}

// ListOrdersRequest represents query parameters for listing a bill's orders
type ListOrdersRequest struct {
	BusinessType string `form:"business_type"`
	CheckStatus  string `form:"check_status"`
	Page         int    `form:"page"`
	PageSize     int    `form:"page_size"`
}

// GenerateRowsRequest selects the partition dimensions. Older clients send
// dimension1/dimension2 instead of the list.
type GenerateRowsRequest struct {
	Dimensions []string `json:"dimensions"`
	Dimension1 string   `json:"dimension1"`
	Dimension2 string   `json:"dimension2"`
}

// Keys returns the requested dimensions in order
func (r GenerateRowsRequest) Keys() []string {
	if len(r.Dimensions) > 0 {
		return r.Dimensions
	}
	var keys []string
	for _, d := range []string{r.Dimension1, r.Dimension2} {
		if strings.TrimSpace(d) != "" {
			keys = append(keys, d)
		}
	}
	return keys
}

// TitleDTO is the nested invoice title shape. A titleId picks a saved title
// and the server fills in its name and tax number.
type TitleDTO struct {
	TitleID   string `json:"titleId"`
	TitleName string `json:"titleName"`
	TaxNumber string `json:"taxNumber"`
}

// RecipientDTO is the nested recipient shape
type RecipientDTO struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// InvoiceRowDTO accepts a submitted row with either nested or flat title and recipient fields
type InvoiceRowDTO struct {
	Category        int             `json:"category"`
	BusinessType    string          `json:"businessType"`
	Summary         string          `json:"summary"`
	Amount          decimal.Decimal `json:"amount"`
	OrderCount      int             `json:"orderCount"`
	Quantity        int             `json:"quantity"`
	DimensionValues []string        `json:"dimensionValues"`
	OrderNos        []string        `json:"orderNos"`

	InvoiceTitle *TitleDTO     `json:"invoiceTitle"`
	Recipient    *RecipientDTO `json:"recipient"`

	TitleID          string `json:"titleId"`
	TitleName        string `json:"titleName"`
	TaxNumber        string `json:"taxNumber"`
	RecipientName    string `json:"recipientName"`
	RecipientPhone   string `json:"recipientPhone"`
	RecipientAddress string `json:"recipientAddress"`
}

// ToEntity normalises the row; nested fields win over flat ones
func (d InvoiceRowDTO) ToEntity() entity.InvoiceRow {
	title := entity.InvoiceTitle{TitleID: d.TitleID, TitleName: d.TitleName, TaxNumber: d.TaxNumber}
	if d.InvoiceTitle != nil {
		title = entity.InvoiceTitle{
			TitleID:   d.InvoiceTitle.TitleID,
			TitleName: d.InvoiceTitle.TitleName,
			TaxNumber: d.InvoiceTitle.TaxNumber,
		}
	}
	title.TitleID = strings.TrimSpace(title.TitleID)
	title.TitleName = strings.TrimSpace(utils.SanitizeString(title.TitleName))
	title.TaxNumber = strings.ToUpper(strings.ReplaceAll(title.TaxNumber, " ", ""))

	recipient := entity.Recipient{Name: d.RecipientName, Phone: d.RecipientPhone, Address: d.RecipientAddress}
	if d.Recipient != nil {
		recipient = entity.Recipient{Name: d.Recipient.Name, Phone: d.Recipient.Phone, Address: d.Recipient.Address}
	}
	recipient.Name = strings.TrimSpace(utils.SanitizeString(recipient.Name))
	recipient.Phone = strings.TrimSpace(recipient.Phone)
	recipient.Address = strings.TrimSpace(utils.SanitizeString(recipient.Address))

	category := entity.InvoiceCategory(d.Category)
	return entity.InvoiceRow{
		Category:        category,
		CategoryName:    category.Name(),
		BusinessType:    entity.BusinessType(d.BusinessType),
		Summary:         d.Summary,
		Amount:          d.Amount.Round(2),
		OrderCount:      d.OrderCount,
		Quantity:        d.Quantity,
		DimensionValues: d.DimensionValues,
		OrderNos:        d.OrderNos,
		Title:           title,
		Recipient:       recipient,
	}
}

// ApplyInvoiceRequest is the body of an invoicing submission
type ApplyInvoiceRequest struct {
	Submitter string          `json:"submitter"`
	Rows      []InvoiceRowDTO `json:"rows"`
}

// UpdateCheckStatusRequest marks a set of a bill's orders checked or unchecked
type UpdateCheckStatusRequest struct {
	OrderNos    []string `json:"orderNos"`
	CheckStatus string   `json:"checkStatus"`
}

// UpdateCheckStatusResponse reports how many orders changed
type UpdateCheckStatusResponse struct {
	BillNo       string `json:"billNo"`
	CheckStatus  string `json:"checkStatus"`
	UpdatedCount int    `json:"updatedCount"`
}

// TitleResponse represents a saved invoice title
type TitleResponse struct {
	TitleID     string `json:"titleId"`
	TitleName   string `json:"titleName"`
	TaxNumber   string `json:"taxNumber"`
	Address     string `json:"address,omitempty"`
	Phone       string `json:"phone,omitempty"`
	BankName    string `json:"bankName,omitempty"`
	BankAccount string `json:"bankAccount,omitempty"`
	IsDefault   bool   `json:"isDefault"`
}

// InvoiceRowResponse represents a generated invoice row
type InvoiceRowResponse struct {
	Category         int      `json:"category"`
	CategoryName     string   `json:"categoryName"`
	BusinessType     string   `json:"businessType"`
	BusinessTypeName string   `json:"businessTypeName"`
	Summary          string   `json:"summary"`
	Amount           string   `json:"amount"`
	OrderCount       int      `json:"orderCount"`
	Quantity         int      `json:"quantity"`
	DimensionValues  []string `json:"dimensionValues,omitempty"`
	OrderNos         []string `json:"orderNos,omitempty"`
}

// CategorySummaryResponse represents one category of the ledger
type CategorySummaryResponse struct {
	Category        int    `json:"category"`
	CategoryName    string `json:"categoryName"`
	ShouldAmount    string `json:"shouldAmount"`
	InvoicedAmount  string `json:"invoicedAmount"`
	RemainingAmount string `json:"remainingAmount"`
	OrderCount      int    `json:"orderCount"`
}

// SummaryResponse represents a bill's invoicing ledger
type SummaryResponse struct {
	BillNo              string                    `json:"billNo"`
	ShouldInvoiceAmount string                    `json:"shouldInvoiceAmount"`
	InvoicedAmount      string                    `json:"invoicedAmount"`
	RemainingAmount     string                    `json:"remainingAmount"`
	FullyInvoiced       bool                      `json:"fullyInvoiced"`
	Details             []CategorySummaryResponse `json:"details"`
	UpdatedAt           string                    `json:"updatedAt"`
}

// InvoiceTableResponse is the result of generating invoice rows
type InvoiceTableResponse struct {
	BillNo     string               `json:"billNo"`
	Dimensions []string             `json:"dimensions"`
	Rows       []InvoiceRowResponse `json:"rows"`
	Summary    *SummaryResponse     `json:"summary"`
}

// ApplicationResponse represents a recorded invoice application
type ApplicationResponse struct {
	ApplicationNo string               `json:"applicationNo"`
	BillNo        string               `json:"billNo"`
	Submitter     string               `json:"submitter,omitempty"`
	Status        string               `json:"status"`
	Amount        string               `json:"amount"`
	AppliedAt     string               `json:"appliedAt"`
	Rows          []InvoiceRowResponse `json:"rows"`
}

// ApplyInvoiceResponse is the result of an accepted submission
type ApplyInvoiceResponse struct {
	Application ApplicationResponse `json:"application"`
	Summary     *SummaryResponse    `json:"summary"`
	BillStatus  string              `json:"billStatus"`
}

func toRowResponses(rows []entity.InvoiceRow) []InvoiceRowResponse {
	out := make([]InvoiceRowResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, InvoiceRowResponse{
			Category:         int(r.Category),
			CategoryName:     r.CategoryName,
			BusinessType:     string(r.BusinessType),
			BusinessTypeName: r.BusinessType.Name(),
			Summary:          r.Summary,
			Amount:           r.Amount.StringFixed(2),
			OrderCount:       r.OrderCount,
			Quantity:         r.Quantity,
			DimensionValues:  r.DimensionValues,
			OrderNos:         r.OrderNos,
		})
	}
	return out
}

func toSummaryResponse(s *entity.BillInvoiceSummary) *SummaryResponse {
	if s == nil {
		return nil
	}
	resp := &SummaryResponse{
		BillNo:              s.BillNo,
		ShouldInvoiceAmount: s.ShouldInvoiceAmount().StringFixed(2),
		InvoicedAmount:      s.InvoicedAmount().StringFixed(2),
		RemainingAmount:     s.RemainingAmount().StringFixed(2),
		FullyInvoiced:       s.IsFullyInvoiced(),
		Details:             make([]CategorySummaryResponse, 0, len(s.Details)),
		UpdatedAt:           s.UpdatedAt.Format(time.RFC3339),
	}
	for _, d := range s.Details {
		resp.Details = append(resp.Details, CategorySummaryResponse{
			Category:        int(d.Category),
			CategoryName:    d.CategoryName,
			ShouldAmount:    d.ShouldAmount.StringFixed(2),
			InvoicedAmount:  d.InvoicedAmount.StringFixed(2),
			RemainingAmount: d.RemainingAmount().StringFixed(2),
			OrderCount:      d.OrderCount,
		})
	}
	return resp
}

func toTableResponse(t *service.InvoiceTable) InvoiceTableResponse {
	dims := make([]string, 0, len(t.Dimensions))
	for _, d := range t.Dimensions {
		dims = append(dims, string(d))
	}
	return InvoiceTableResponse{
		BillNo:     t.BillNo,
		Dimensions: dims,
		Rows:       toRowResponses(t.Rows),
		Summary:    toSummaryResponse(t.Summary),
	}
}

func toApplicationResponse(a *entity.InvoiceApplication) ApplicationResponse {
	return ApplicationResponse{
		ApplicationNo: a.ApplicationNo,
		BillNo:        a.BillNo,
		Submitter:     a.Submitter,
		Status:        a.Status,
		Amount:        a.Amount.StringFixed(2),
		AppliedAt:     a.AppliedAt.Format(time.RFC3339),
		Rows:          toRowResponses(a.Rows),
	}
}

func toTitleResponses(titles []*entity.TitleProfile) []TitleResponse {
	out := make([]TitleResponse, 0, len(titles))
	for _, t := range titles {
		out = append(out, TitleResponse{
			TitleID:     t.TitleID,
			TitleName:   t.TitleName,
			TaxNumber:   t.TaxNumber,
			Address:     t.Address,
			Phone:       t.Phone,
			BankName:    t.BankName,
			BankAccount: t.BankAccount,
			IsDefault:   t.IsDefault,
		})
	}
	return out
}
