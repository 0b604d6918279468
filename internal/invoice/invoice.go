package invoice

import (
	"time"

	"github.com/ocrdesk/invoice-tracker/internal/parsing"
)

// Invoice is the persisted invoice header. Monetary fields stay pointers so
// "absent" survives the round trip through storage; TaxRate holds the literal
// percentage as printed, not a fraction.
type Invoice struct {
	InvoiceNumber string   `json:"invoice_number"`
	InvoiceDate   string   `json:"invoice_date,omitempty"`
	Status        string   `json:"invoice_status"`
	Subtotal      *float64 `json:"subtotal"`
	Discount      *float64 `json:"discount"`
	TaxRate       *float64 `json:"tax_rate"`
	TotalTax      *float64 `json:"total_tax"`
	BalanceDue    *float64 `json:"balance_due"`
	TotalAmount   *float64 `json:"total_amount"`
	Currency      string   `json:"currency,omitempty"`

	SupplierID uint64 `json:"supplier_id,omitempty"`
	CustomerID uint64 `json:"customer_id,omitempty"`

	PaymentTerms        string `json:"payment_terms,omitempty"`
	BankName            string `json:"bank_name,omitempty"`
	Branch              string `json:"branch,omitempty"`
	AccountNumber       string `json:"account_number,omitempty"`
	PaymentInstructions string `json:"payment_instructions,omitempty"`

	SourceFile  string    `json:"source_file"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Supplier is a deduplicated supplier identity with a surrogate key.
type Supplier struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// Customer is a deduplicated customer identity with a surrogate key.
type Customer struct {
	ID              uint64 `json:"id"`
	Name            string `json:"name"`
	BillingAddress  string `json:"billing_address,omitempty"`
	ShippingAddress string `json:"shipping_address,omitempty"`
}

// fromDocument maps an assembled extraction record to the persistence model.
func fromDocument(doc parsing.Document, sourceFile, contentType string, now time.Time) *Invoice {
	f := doc.Fields
	inv := &Invoice{
		Status:      f.InvoiceStatus,
		Subtotal:    f.Subtotal,
		Discount:    f.Discount,
		TaxRate:     f.TaxRate,
		TotalTax:    f.TotalTax,
		BalanceDue:  f.BalanceDue,
		TotalAmount: f.TotalAmount,
		SourceFile:  sourceFile,
		ContentType: contentType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if f.InvoiceNumber != nil {
		inv.InvoiceNumber = *f.InvoiceNumber
	}
	if f.InvoiceDate != nil {
		inv.InvoiceDate = *f.InvoiceDate
	}
	if f.Currency != nil {
		inv.Currency = *f.Currency
	}
	if f.PaymentTerms != nil {
		inv.PaymentTerms = *f.PaymentTerms
	}
	if f.BankName != nil {
		inv.BankName = *f.BankName
	}
	if f.Branch != nil {
		inv.Branch = *f.Branch
	}
	if f.AccountNumber != nil {
		inv.AccountNumber = *f.AccountNumber
	}
	if f.PaymentInstructions != nil {
		inv.PaymentInstructions = *f.PaymentInstructions
	}
	return inv
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
