package entity

import "time"

// TitleProfile is a saved buyer header (发票抬头) that submitted rows can reference by TitleID
type TitleProfile struct {
	TitleID     string    `json:"title_id"`
	TitleName   string    `json:"title_name"`
	TaxNumber   string    `json:"tax_number"`
	Address     string    `json:"address,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	BankName    string    `json:"bank_name,omitempty"`
	BankAccount string    `json:"bank_account,omitempty"`
	IsDefault   bool      `json:"is_default"`
	CreatedAt   time.Time `json:"created_at"`
}

// InvoiceTitle returns the header printed on rows that use this profile
func (p *TitleProfile) InvoiceTitle() InvoiceTitle {
	return InvoiceTitle{TitleID: p.TitleID, TitleName: p.TitleName, TaxNumber: p.TaxNumber}
}
