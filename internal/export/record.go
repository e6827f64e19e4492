package export

import (
	"strconv"
	"strings"

	"github.com/garyjia/bill-invoicing/internal/domain/entity"
)

// Column names one field of a flat record and its sheet header
type Column struct {
	Key    string
	Header string
}

// Record is a flat field-name to value row, the shape every export target consumes
type Record map[string]string

// Values returns the record's cells in column order
func (r Record) Values(columns []Column) []interface{} {
	values := make([]interface{}, len(columns))
	for i, c := range columns {
		values[i] = r[c.Key]
	}
	return values
}

// InvoiceRowColumns lists the invoice sheet layout
var InvoiceRowColumns = []Column{
	{"category", "发票类型"},
	{"businessType", "业务类型"},
	{"summary", "开票摘要"},
	{"amount", "开票金额"},
	{"quantity", "数量"},
	{"orderCount", "订单数"},
	{"titleName", "发票抬头"},
	{"taxNumber", "纳税人识别号"},
	{"recipientName", "收件人"},
	{"recipientPhone", "联系电话"},
	{"recipientAddress", "收件地址"},
}

// SummaryColumns lists the summary sheet layout
var SummaryColumns = []Column{
	{"category", "发票类型"},
	{"shouldAmount", "应开金额"},
	{"invoicedAmount", "已开金额"},
	{"remainingAmount", "待开金额"},
	{"orderCount", "订单数"},
}

// OrderColumns lists the order sheet layout
var OrderColumns = []Column{
	{"orderNo", "订单号"},
	{"businessType", "业务类型"},
	{"travelerName", "出行人"},
	{"payAmount", "支付金额"},
	{"businessLine", "业务线"},
	{"legalEntity", "法人实体"},
	{"paymentAccount", "支付账户"},
	{"department", "部门"},
	{"checkStatus", "核对状态"},
}

// InvoiceRowRecord flattens an invoice row
func InvoiceRowRecord(row entity.InvoiceRow) Record {
	return Record{
		"category":         row.CategoryName,
		"businessType":     row.BusinessType.Name(),
		"summary":          row.Summary,
		"amount":           row.Amount.StringFixed(2),
		"quantity":         strconv.Itoa(row.Quantity),
		"orderCount":       strconv.Itoa(row.OrderCount),
		"titleName":        row.Title.TitleName,
		"taxNumber":        row.Title.TaxNumber,
		"recipientName":    row.Recipient.Name,
		"recipientPhone":   row.Recipient.Phone,
		"recipientAddress": row.Recipient.Address,
		"orderNos":         strings.Join(row.OrderNos, ","),
	}
}

// SummaryRecord flattens one category of the ledger
func SummaryRecord(d entity.CategorySummary) Record {
	return Record{
		"category":        d.CategoryName,
		"shouldAmount":    d.ShouldAmount.StringFixed(2),
		"invoicedAmount":  d.InvoicedAmount.StringFixed(2),
		"remainingAmount": d.RemainingAmount().StringFixed(2),
		"orderCount":      strconv.Itoa(d.OrderCount),
	}
}

// OrderRecord flattens an order
func OrderRecord(o entity.Order) Record {
	return Record{
		"orderNo":        o.OrderNo,
		"businessType":   o.BusinessType.Name(),
		"travelerName":   o.TravelerName,
		"payAmount":      o.PayAmount.StringFixed(2),
		"businessLine":   o.BusinessLine,
		"legalEntity":    o.LegalEntity,
		"paymentAccount": o.PaymentAccount,
		"department":     o.Department,
		"checkStatus":    o.CheckStatus,
	}
}
