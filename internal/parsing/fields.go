package parsing

import (
	"regexp"
	"strings"
)

// StatusUnpaid is the sentinel status used when no status keyword is found.
const StatusUnpaid = "UNPAID"

// Fields is the header record extracted from one invoice. Every field except
// InvoiceStatus is optional; a nil pointer means the field was absent from
// the text. Values are fully parsed, never raw OCR substrings.
type Fields struct {
	InvoiceNumber *string
	InvoiceDate   *string
	InvoiceStatus string

	Subtotal    *float64
	Discount    *float64
	TaxRate     *float64
	TotalTax    *float64
	BalanceDue  *float64
	TotalAmount *float64
	Currency    *string

	SupplierName    *string
	SupplierAddress *string
	SupplierEmail   *string
	SupplierPhone   *string

	CustomerName    *string
	BillingAddress  *string
	ShippingAddress *string

	PaymentTerms        *string
	BankName            *string
	Branch              *string
	AccountNumber       *string
	PaymentInstructions *string
}

// Empty reports whether no field was recovered from the text. InvoiceStatus
// is ignored because it always carries the UNPAID default.
func (f Fields) Empty() bool {
	return f.InvoiceNumber == nil && f.InvoiceDate == nil &&
		f.Subtotal == nil && f.Discount == nil && f.TaxRate == nil &&
		f.TotalTax == nil && f.BalanceDue == nil && f.TotalAmount == nil &&
		f.Currency == nil &&
		f.SupplierName == nil && f.SupplierAddress == nil &&
		f.SupplierEmail == nil && f.SupplierPhone == nil &&
		f.CustomerName == nil && f.BillingAddress == nil && f.ShippingAddress == nil &&
		f.PaymentTerms == nil && f.BankName == nil && f.Branch == nil &&
		f.AccountNumber == nil && f.PaymentInstructions == nil
}

// rule is one named matcher for a field: a pattern whose first capture group
// yields the candidate token, plus an optional clean step. Rules for a field
// are tried in declared order and the first match wins, which acts as the
// tie-break when OCR noise produces several plausible substrings.
type rule struct {
	name  string
	re    *regexp.Regexp
	clean func(string) string
}

func (r rule) apply(text string) (string, bool) {
	m := r.re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	v := strings.TrimSpace(m[1])
	if r.clean != nil {
		v = r.clean(v)
	}
	if v == "" {
		return "", false
	}
	return v, true
}

// cleanInvoiceNumber strips the em-dash and underscore artifacts OCR tends to
// attach to invoice numbers.
func cleanInvoiceNumber(v string) string {
	v = strings.ReplaceAll(v, "—_", "")
	v = strings.ReplaceAll(v, "—", "")
	v = strings.ReplaceAll(v, "_", "")
	return strings.Trim(v, " -.:")
}

func cleanTrailingPunct(v string) string {
	return strings.TrimRight(v, " .,;:")
}

var (
	invoiceNumberRules = []rule{
		{name: "labelled", re: regexp.MustCompile(`(?i)\binvoice\s*(?:no|number|num)\b\.?\s*[:#]?\s*([A-Za-z0-9—_][A-Za-z0-9/_—-]*)`), clean: cleanInvoiceNumber},
		{name: "hash", re: regexp.MustCompile(`(?i)\binvoice\s*#\s*([A-Za-z0-9—_][A-Za-z0-9/_—-]*)`), clean: cleanInvoiceNumber},
		{name: "bare-hash", re: regexp.MustCompile(`(?m)#\s*([A-Za-z0-9-]{3,})`), clean: cleanInvoiceNumber},
	}

	invoiceDateRules = []rule{
		{name: "labelled", re: regexp.MustCompile(`(?i)\b(?:invoice\s+)?date\b\s*[:.]?\s*(\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4})`)},
		{name: "labelled-written", re: regexp.MustCompile(`(?i)\b(?:invoice\s+)?date\b\s*[:.]?\s*([A-Za-z]{3,9}\.?\s+\d{1,2},?\s+\d{4})`)},
		{name: "iso", re: regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)},
	}

	subtotalRules = []rule{
		{name: "labelled", re: regexp.MustCompile(`(?i)\bsub\s*-?\s*total\b(?:\s*\([^)]*\))?\s*[:.]?\s*(-|\d[\d.,]*)`)},
	}

	discountRules = []rule{
		{name: "labelled", re: regexp.MustCompile(`(?i)\bdiscount\b(?:\s*\([^)]*\))?\s*[:.]?\s*(-|\d[\d.,]*\s*%?)`)},
	}

	taxRateRules = []rule{
		{name: "labelled", re: regexp.MustCompile(`(?i)\btax\s*rate\b\s*[:.]?\s*(-|\d[\d.,]*\s*%?)`)},
		{name: "vat", re: regexp.MustCompile(`(?i)\b(?:vat|gst)\b\s*[:.]?\s*(\d[\d.,]*\s*%)`)},
	}

	totalTaxRules = []rule{
		{name: "labelled", re: regexp.MustCompile(`(?i)\btotal\s*tax\b(?:\s*\([^)]*\))?\s*[:.]?\s*(-|\d[\d.,]*)`)},
		{name: "tax-amount", re: regexp.MustCompile(`(?i)\btax\s*amount\b\s*[:.]?\s*(-|\d[\d.,]*)`)},
	}

	balanceDueRules = []rule{
		{name: "labelled", re: regexp.MustCompile(`(?i)\bbalance\s*due\b(?:\s*\([^)]*\))?\s*[:.]?\s*(-|\d[\d.,]*)`)},
	}

	totalAmountRules = []rule{
		{name: "total-amount", re: regexp.MustCompile(`(?i)\btotal\s+amount\b(?:\s*\([^)]*\))?\s*[:.]?\s*(-|\d[\d.,]*)`)},
		{name: "grand-total", re: regexp.MustCompile(`(?i)\bgrand\s+total\b(?:\s*\([^)]*\))?\s*[:.]?\s*(-|\d[\d.,]*)`)},
		{name: "total-line", re: regexp.MustCompile(`(?im)^total\b(?:\s*\([^)]*\))?\s*[:.]?\s*(\d[\d.,]*)\s*$`)},
	}

	// The currency is the label suffix on the total or balance line, e.g.
	// "TOTAL (Rs.)" or "Balance Due (USD)".
	currencyRules = []rule{
		{name: "total-suffix", re: regexp.MustCompile(`(?i)\b(?:grand\s+)?total(?:\s+amount)?\s*\(\s*([^)]+?)\s*\)`)},
		{name: "balance-suffix", re: regexp.MustCompile(`(?i)\bbalance\s*due\s*\(\s*([^)]+?)\s*\)`)},
	}

	supplierNameRules = []rule{
		{name: "from", re: regexp.MustCompile(`(?im)^from\s*[:.]?\s*(\S[^\n]*)$`), clean: cleanTrailingPunct},
		{name: "sold-by", re: regexp.MustCompile(`(?i)\bsold\s+by\s*[:.]?\s*(\S[^\n]*)`), clean: cleanTrailingPunct},
		{name: "supplier", re: regexp.MustCompile(`(?i)\bsupplier\s*(?:name)?\s*[:.]?\s*(\S[^\n]*)`), clean: cleanTrailingPunct},
	}

	supplierAddressRules = []rule{
		// Anchored at line start so "Billing Address" lines don't match.
		{name: "labelled", re: regexp.MustCompile(`(?im)^address\s*[:.]?\s*(\S[^\n]*)`), clean: cleanTrailingPunct},
		{name: "supplier-address", re: regexp.MustCompile(`(?i)\bsupplier\s+address\s*[:.]?\s*(\S[^\n]*)`), clean: cleanTrailingPunct},
	}

	supplierEmailRules = []rule{
		{name: "labelled", re: regexp.MustCompile(`(?i)\be-?mail\s*[:.]?\s*([A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,})`)},
		{name: "bare", re: regexp.MustCompile(`([A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,})`)},
	}

	supplierPhoneRules = []rule{
		{name: "labelled", re: regexp.MustCompile(`(?i)\b(?:phone|tel|mobile|contact)\b\s*(?:no|number)?\.?\s*[:.]?\s*(\+?\d[\d\s()-]{6,}\d)`)},
	}

	customerNameRules = []rule{
		{name: "bill-to", re: regexp.MustCompile(`(?i)\bbill(?:ed)?\s+to\s*[:.]?\s*(\S[^\n]*)`), clean: cleanTrailingPunct},
		{name: "bill-to-next-line", re: regexp.MustCompile(`(?im)^bill(?:ed)?\s+to\s*[:.]?\s*\n(\S[^\n]*)`), clean: cleanTrailingPunct},
		{name: "customer", re: regexp.MustCompile(`(?i)\bcustomer\s*(?:name)?\s*[:.]?\s*(\S[^\n]*)`), clean: cleanTrailingPunct},
	}

	billingAddressRules = []rule{
		{name: "labelled", re: regexp.MustCompile(`(?i)\bbilling\s+address\s*[:.]?\s*(\S[^\n]*)`), clean: cleanTrailingPunct},
	}

	shippingAddressRules = []rule{
		{name: "labelled", re: regexp.MustCompile(`(?i)\bshipping\s+address\s*[:.]?\s*(\S[^\n]*)`), clean: cleanTrailingPunct},
		{name: "ship-to", re: regexp.MustCompile(`(?i)\bship\s+to\s*[:.]?\s*(\S[^\n]*)`), clean: cleanTrailingPunct},
	}

	paymentTermsRules = []rule{
		{name: "labelled", re: regexp.MustCompile(`(?i)\bpayment\s+terms?\s*[:.]?\s*(\S[^\n]*)`), clean: cleanTrailingPunct},
		{name: "net", re: regexp.MustCompile(`(?i)\bterms?\s*[:.]?\s*(net\s+\d+[^\n]*)`), clean: cleanTrailingPunct},
	}

	bankNameRules = []rule{
		{name: "labelled", re: regexp.MustCompile(`(?i)\bbank\s*(?:name)?\s*[:.]?\s*(\S[^\n]*)`), clean: cleanTrailingPunct},
	}

	branchRules = []rule{
		{name: "labelled", re: regexp.MustCompile(`(?i)\bbranch\s*[:.]?\s*(\S[^\n]*)`), clean: cleanTrailingPunct},
	}

	accountNumberRules = []rule{
		{name: "labelled", re: regexp.MustCompile(`(?i)\b(?:a/?c|account)\s*(?:no|number)?\.?\s*[:#]?\s*(\d[\d\s-]{3,}\d)`), clean: cleanTrailingPunct},
	}

	paymentInstructionsRules = []rule{
		{name: "labelled", re: regexp.MustCompile(`(?i)\bpayment\s+instructions?\s*[:.]?\s*(\S[^\n]*)`), clean: cleanTrailingPunct},
	}
)

// statusKeywords is the closed set of recognized invoice statuses, longest
// match first so PARTIALLY PAID wins over PAID. Word boundaries keep PAID
// from matching inside UNPAID.
var statusKeywords = []struct {
	status string
	re     *regexp.Regexp
}{
	{"CANCELLED", regexp.MustCompile(`(?i)\bcancell?ed\b`)},
	{"OVERDUE", regexp.MustCompile(`(?i)\boverdue\b`)},
	{"PARTIALLY PAID", regexp.MustCompile(`(?i)\bpartially\s+paid\b`)},
	{"UNPAID", regexp.MustCompile(`(?i)\bunpaid\b`)},
	{"PAID", regexp.MustCompile(`(?i)\bpaid\b`)},
	{"DRAFT", regexp.MustCompile(`(?i)\bdraft\b`)},
}

// ExtractFields applies the per-field rule lists to normalized text and
// returns a partially populated Fields. A field with no matching rule is left
// absent; that is expected, not an error. Numeric fields whose matched token
// cannot be normalized are demoted to absent.
func ExtractFields(text string) Fields {
	f := Fields{InvoiceStatus: StatusUnpaid}

	f.InvoiceNumber = firstString(text, invoiceNumberRules)
	f.InvoiceDate = firstString(text, invoiceDateRules)
	for _, kw := range statusKeywords {
		if kw.re.MatchString(text) {
			f.InvoiceStatus = kw.status
			break
		}
	}

	f.Subtotal = firstAmount(text, subtotalRules)
	f.Discount = firstAmount(text, discountRules)
	f.TaxRate = firstRate(text, taxRateRules)
	f.TotalTax = firstAmount(text, totalTaxRules)
	f.BalanceDue = firstAmount(text, balanceDueRules)
	f.TotalAmount = firstAmount(text, totalAmountRules)
	f.Currency = firstString(text, currencyRules)

	f.SupplierName = firstString(text, supplierNameRules)
	f.SupplierAddress = firstString(text, supplierAddressRules)
	f.SupplierEmail = firstString(text, supplierEmailRules)
	f.SupplierPhone = firstString(text, supplierPhoneRules)

	f.CustomerName = firstString(text, customerNameRules)
	f.BillingAddress = firstString(text, billingAddressRules)
	f.ShippingAddress = firstString(text, shippingAddressRules)

	f.PaymentTerms = firstString(text, paymentTermsRules)
	f.BankName = firstString(text, bankNameRules)
	f.Branch = firstString(text, branchRules)
	f.AccountNumber = firstString(text, accountNumberRules)
	f.PaymentInstructions = firstString(text, paymentInstructionsRules)

	return f
}

func firstString(text string, rules []rule) *string {
	for _, r := range rules {
		if v, ok := r.apply(text); ok {
			return &v
		}
	}
	return nil
}

// firstAmount resolves the field from the first rule that matches. A token
// that matched but cannot be normalized demotes the field to absent instead
// of falling through to later rules; the rule ordering already decided which
// substring is the field's value.
func firstAmount(text string, rules []rule) *float64 {
	for _, r := range rules {
		if v, ok := r.apply(text); ok {
			n, err := Amount(v)
			if err != nil {
				return nil
			}
			return &n
		}
	}
	return nil
}

func firstRate(text string, rules []rule) *float64 {
	for _, r := range rules {
		if v, ok := r.apply(text); ok {
			n, err := Rate(v)
			if err != nil {
				return nil
			}
			return &n
		}
	}
	return nil
}
