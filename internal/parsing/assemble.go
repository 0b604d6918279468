package parsing

// Document is the assembled extraction result: the header fields plus the
// ordered line items. It is constructed once per input text and never
// mutated afterwards.
type Document struct {
	Fields Fields
	Items  []LineItem
}

// Assemble merges header fields and line items into one record. fallbackID is
// substituted for the invoice number only when none was extracted; it is an
// explicit caller parameter (typically the source filename stem) so the
// parsing core stays free of caller naming conventions.
func Assemble(fields Fields, items []LineItem, fallbackID string) Document {
	if fields.InvoiceNumber == nil && fallbackID != "" {
		fields.InvoiceNumber = &fallbackID
	}
	its := make([]LineItem, len(items))
	copy(its, items)
	return Document{Fields: fields, Items: its}
}

// Parse runs the full extraction over raw OCR text: normalize once, then
// header fields and line items independently, then assembly. The two
// extractors never interact, so their order is immaterial.
func Parse(text, fallbackID string) Document {
	normalized := Normalize(text)
	fields := ExtractFields(normalized)
	items := ExtractLineItems(normalized)
	return Assemble(fields, items, fallbackID)
}

// Map renders the document as the flat key/value record consumed by
// persistence and presentation. Absent fields serialize as nil.
func (d Document) Map() map[string]any {
	items := make([]map[string]any, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, map[string]any{
			"description": it.Description,
			"quantity":    it.Quantity,
			"unit_price":  it.UnitPrice,
			"line_total":  it.LineTotal,
		})
	}
	return map[string]any{
		"invoice_number":            strOrNil(d.Fields.InvoiceNumber),
		"invoice_date":              strOrNil(d.Fields.InvoiceDate),
		"invoice_status":            d.Fields.InvoiceStatus,
		"subtotal":                  numOrNil(d.Fields.Subtotal),
		"discount":                  numOrNil(d.Fields.Discount),
		"tax_rate":                  numOrNil(d.Fields.TaxRate),
		"total_tax":                 numOrNil(d.Fields.TotalTax),
		"balance_due":               numOrNil(d.Fields.BalanceDue),
		"total_amount":              numOrNil(d.Fields.TotalAmount),
		"currency":                  strOrNil(d.Fields.Currency),
		"supplier_name":             strOrNil(d.Fields.SupplierName),
		"supplier_address":          strOrNil(d.Fields.SupplierAddress),
		"supplier_email":            strOrNil(d.Fields.SupplierEmail),
		"supplier_phone":            strOrNil(d.Fields.SupplierPhone),
		"customer_name":             strOrNil(d.Fields.CustomerName),
		"customer_billing_address":  strOrNil(d.Fields.BillingAddress),
		"customer_shipping_address": strOrNil(d.Fields.ShippingAddress),
		"payment_terms":             strOrNil(d.Fields.PaymentTerms),
		"bank_name":                 strOrNil(d.Fields.BankName),
		"branch":                    strOrNil(d.Fields.Branch),
		"account_number":            strOrNil(d.Fields.AccountNumber),
		"payment_instructions":      strOrNil(d.Fields.PaymentInstructions),
		"items":                     items,
	}
}

func strOrNil(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func numOrNil(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
