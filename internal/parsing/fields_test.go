package parsing

import (
	"regexp"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ExtractFields", func() {
	var (
		text   string
		fields Fields
	)

	JustBeforeEach(func() {
		fields = ExtractFields(Normalize(text))
	})

	When("the text has labelled monetary fields", func() {
		BeforeEach(func() {
			text = "SUBTOTAL 135,000.00\nDISCOUNT -\nTAX RATE 0.00%\nTOTAL TAX 0.00\nBALANCE DUE 135,000.00"
		})

		It("parses the subtotal with separators removed", func() {
			Expect(fields.Subtotal).To(HaveValue(Equal(135000.00)))
		})

		It("treats the dash discount placeholder as zero", func() {
			Expect(fields.Discount).To(HaveValue(Equal(0.0)))
		})

		It("keeps the tax rate as a literal percentage", func() {
			Expect(fields.TaxRate).To(HaveValue(Equal(0.0)))
		})

		It("parses the total tax", func() {
			Expect(fields.TotalTax).To(HaveValue(Equal(0.0)))
		})

		It("parses the balance due", func() {
			Expect(fields.BalanceDue).To(HaveValue(Equal(135000.00)))
		})
	})

	When("the total line carries a currency label", func() {
		BeforeEach(func() {
			text = "TOTAL (Rs.) 135,000.00"
		})

		It("derives the currency from the label suffix", func() {
			Expect(fields.Currency).To(HaveValue(Equal("Rs.")))
		})

		It("parses the total amount", func() {
			Expect(fields.TotalAmount).To(HaveValue(Equal(135000.00)))
		})
	})

	When("only the balance due line names a currency", func() {
		BeforeEach(func() {
			text = "Balance Due (USD) 950.00"
		})

		It("derives the currency from the balance line", func() {
			Expect(fields.Currency).To(HaveValue(Equal("USD")))
		})
	})

	When("the invoice number is labelled", func() {
		BeforeEach(func() {
			text = "Invoice No: INV-2025/091\nInvoice Date: 25/09/2025"
		})

		It("extracts the invoice number", func() {
			Expect(fields.InvoiceNumber).To(HaveValue(Equal("INV-2025/091")))
		})

		It("extracts the invoice date", func() {
			Expect(fields.InvoiceDate).To(HaveValue(Equal("25/09/2025")))
		})
	})

	When("the invoice number carries OCR dash artifacts", func() {
		BeforeEach(func() {
			text = "Invoice Number: —_INV-42"
		})

		It("strips the artifacts", func() {
			Expect(fields.InvoiceNumber).To(HaveValue(Equal("INV-42")))
		})
	})

	When("no status keyword is present", func() {
		BeforeEach(func() {
			text = "Invoice No: 1\nTotal 10.00"
		})

		It("defaults the status to UNPAID", func() {
			Expect(fields.InvoiceStatus).To(Equal(StatusUnpaid))
		})
	})

	When("a PAID keyword is present", func() {
		BeforeEach(func() {
			text = "Invoice No: 1\nStatus: PAID"
		})

		It("sets the status", func() {
			Expect(fields.InvoiceStatus).To(Equal("PAID"))
		})
	})

	When("a PARTIALLY PAID keyword is present", func() {
		BeforeEach(func() {
			text = "Invoice No: 1\nStatus: Partially Paid"
		})

		It("does not misread it as PAID", func() {
			Expect(fields.InvoiceStatus).To(Equal("PARTIALLY PAID"))
		})
	})

	When("an UNPAID keyword is present", func() {
		BeforeEach(func() {
			text = "This invoice is unpaid"
		})

		It("does not misread it as PAID", func() {
			Expect(fields.InvoiceStatus).To(Equal("UNPAID"))
		})
	})

	When("fields appear in arbitrary order with case variation", func() {
		BeforeEach(func() {
			text = "balance due 42.00\ninvoice no. abc-1\nsub-total : 40.00"
		})

		It("extracts the invoice number", func() {
			Expect(fields.InvoiceNumber).To(HaveValue(Equal("abc-1")))
		})

		It("extracts the subtotal despite punctuation", func() {
			Expect(fields.Subtotal).To(HaveValue(Equal(40.00)))
		})

		It("extracts the balance due", func() {
			Expect(fields.BalanceDue).To(HaveValue(Equal(42.00)))
		})
	})

	When("supplier and customer details are present", func() {
		BeforeEach(func() {
			text = "From: Acme Training Ltd.\n" +
				"Address: 12 Mill Road, Colombo\n" +
				"Email: billing@acme.example\n" +
				"Phone: +94 11 234 5678\n" +
				"Bill To: Globex Corporation\n" +
				"Billing Address: 1 Tower Place, Galle\n" +
				"Shipping Address: 1 Tower Place, Galle"
		})

		It("extracts the supplier name", func() {
			Expect(fields.SupplierName).To(HaveValue(Equal("Acme Training Ltd")))
		})

		It("extracts the supplier address", func() {
			Expect(fields.SupplierAddress).To(HaveValue(Equal("12 Mill Road, Colombo")))
		})

		It("extracts the supplier email", func() {
			Expect(fields.SupplierEmail).To(HaveValue(Equal("billing@acme.example")))
		})

		It("extracts the supplier phone", func() {
			Expect(fields.SupplierPhone).To(HaveValue(Equal("+94 11 234 5678")))
		})

		It("extracts the customer name", func() {
			Expect(fields.CustomerName).To(HaveValue(Equal("Globex Corporation")))
		})

		It("extracts the billing address", func() {
			Expect(fields.BillingAddress).To(HaveValue(Equal("1 Tower Place, Galle")))
		})

		It("extracts the shipping address", func() {
			Expect(fields.ShippingAddress).To(HaveValue(Equal("1 Tower Place, Galle")))
		})
	})

	When("payment details are present", func() {
		BeforeEach(func() {
			text = "Payment Terms: Net 30\n" +
				"Bank Name: First National\n" +
				"Branch: Fort\n" +
				"Account No: 001-234-567\n" +
				"Payment Instructions: wire transfer only"
		})

		It("extracts the payment terms", func() {
			Expect(fields.PaymentTerms).To(HaveValue(Equal("Net 30")))
		})

		It("extracts the bank name", func() {
			Expect(fields.BankName).To(HaveValue(Equal("First National")))
		})

		It("extracts the branch", func() {
			Expect(fields.Branch).To(HaveValue(Equal("Fort")))
		})

		It("extracts the account number", func() {
			Expect(fields.AccountNumber).To(HaveValue(Equal("001-234-567")))
		})

		It("extracts the payment instructions", func() {
			Expect(fields.PaymentInstructions).To(HaveValue(Equal("wire transfer only")))
		})
	})

	When("a labelled numeric field has no capturable token", func() {
		BeforeEach(func() {
			text = "Subtotal huh\nTotal 10.00"
		})

		It("leaves the field absent instead of aborting", func() {
			Expect(fields.Subtotal).To(BeNil())
		})

		It("still extracts the other fields", func() {
			Expect(fields.TotalAmount).To(HaveValue(Equal(10.00)))
		})
	})

	When("the text contains nothing recognizable", func() {
		BeforeEach(func() {
			text = "lorem ipsum dolor"
		})

		It("reports an empty record", func() {
			Expect(fields.Empty()).To(BeTrue())
		})

		It("still defaults the status", func() {
			Expect(fields.InvoiceStatus).To(Equal(StatusUnpaid))
		})
	})

	When("parsing the same text twice", func() {
		BeforeEach(func() {
			text = "Invoice No: INV-7\nSubtotal 99.00\nTotal (Rs.) 99.00"
		})

		It("yields identical records", func() {
			Expect(ExtractFields(Normalize(text))).To(Equal(fields))
		})
	})
})

var _ = Describe("firstAmount", func() {
	When("the matched rule captures a token the normalizer rejects", func() {
		// The field rule lists only capture digit-bearing tokens, so this
		// path needs a looser rule to reach.
		rules := []rule{
			{name: "loose", re: regexp.MustCompile(`(?i)\bvalue\s+(\S+)`)},
			{name: "digits", re: regexp.MustCompile(`(\d[\d.,]*)`)},
		}

		It("demotes the field to absent instead of trying later rules", func() {
			Expect(firstAmount("value garbage 12.00", rules)).To(BeNil())
		})

		It("resolves normally when the captured token parses", func() {
			Expect(firstAmount("value 12.00", rules)).To(HaveValue(Equal(12.00)))
		})
	})
})
