package entity

import "github.com/shopspring/decimal"

// InvoiceCategory is the kind of billing document an invoice row will produce
type InvoiceCategory int

const (
	CategoryGeneral         InvoiceCategory = 1 // 增值税普通发票
	CategorySpecial         InvoiceCategory = 2 // 增值税专用发票
	CategoryFlightItinerary InvoiceCategory = 3 // 机票电子行程单
	CategoryTrainItinerary  InvoiceCategory = 4 // 火车票电子行程单
)

var categoryNames = map[InvoiceCategory]string{
	CategoryGeneral:         "增值税普票",
	CategorySpecial:         "增值税专票",
	CategoryFlightItinerary: "机票电子行程单",
	CategoryTrainItinerary:  "火车票电子行程单",
}

// Categories lists every invoice category in display order
var Categories = []InvoiceCategory{
	CategoryGeneral,
	CategorySpecial,
	CategoryFlightItinerary,
	CategoryTrainItinerary,
}

// Name returns the display name of the category
func (c InvoiceCategory) Name() string {
	return categoryNames[c]
}

// IsValid reports whether c is a known category
func (c InvoiceCategory) IsValid() bool {
	_, ok := categoryNames[c]
	return ok
}

// IsItinerary reports whether the category is issued one document per ticket
func (c InvoiceCategory) IsItinerary() bool {
	return c == CategoryFlightItinerary || c == CategoryTrainItinerary
}

// PartitionKey is a dimension used to split one category's total into several rows
type PartitionKey string

const (
	PartitionBusinessLine   PartitionKey = "businessLine"
	PartitionLegalEntity    PartitionKey = "legalEntity"
	PartitionPaymentAccount PartitionKey = "paymentAccount"
	PartitionDepartment     PartitionKey = "department"
)

var partitionKeyLabels = map[PartitionKey][2]string{
	PartitionBusinessLine:   {"业务线", "默认业务线"},
	PartitionLegalEntity:    {"法人实体", "默认法人实体"},
	PartitionPaymentAccount: {"支付账户", "默认支付账户"},
	PartitionDepartment:     {"部门", "默认部门"},
}

// IsValid reports whether k is a supported partition key
func (k PartitionKey) IsValid() bool {
	_, ok := partitionKeyLabels[k]
	return ok
}

// Name returns the display name of the dimension
func (k PartitionKey) Name() string {
	return partitionKeyLabels[k][0]
}

// DefaultLabel is used for orders that lack the attribute
func (k PartitionKey) DefaultLabel() string {
	return partitionKeyLabels[k][1]
}

// InvoiceTitle is the buyer header printed on the invoice (发票抬头).
// TitleID is set when the header comes from a saved TitleProfile.
type InvoiceTitle struct {
	TitleID   string `json:"title_id,omitempty"`
	TitleName string `json:"title_name" validate:"required"`
	TaxNumber string `json:"tax_number" validate:"required,taxid"`
}

// Recipient is where the issued documents are delivered
type Recipient struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required,phone"`
	Address string `json:"address" validate:"required"`
}

// InvoiceRow is one prospective line of an invoicing submission.
// Amount is rounded to two places; title and recipient are filled by the caller.
type InvoiceRow struct {
	Category        InvoiceCategory `json:"category"`
	CategoryName    string          `json:"category_name"`
	BusinessType    BusinessType    `json:"business_type"`
	Summary         string          `json:"summary"`
	Amount          decimal.Decimal `json:"amount"`
	OrderCount      int             `json:"order_count"`
	Quantity        int             `json:"quantity"`
	DimensionValues []string        `json:"dimension_values,omitempty"`
	OrderNos        []string        `json:"order_nos,omitempty"`

	Title     InvoiceTitle `json:"title"`
	Recipient Recipient    `json:"recipient"`
	IsValid   bool         `json:"is_valid"`
}
