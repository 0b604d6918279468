package parsing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Assemble", func() {
	var (
		fields     Fields
		items      []LineItem
		fallbackID string
		doc        Document
	)

	BeforeEach(func() {
		fields = Fields{InvoiceStatus: StatusUnpaid}
		items = nil
		fallbackID = "print.pdf"
	})

	JustBeforeEach(func() {
		doc = Assemble(fields, items, fallbackID)
	})

	When("the invoice number is absent", func() {
		It("substitutes the fallback identifier", func() {
			Expect(doc.Fields.InvoiceNumber).To(HaveValue(Equal("print.pdf")))
		})
	})

	When("the invoice number was extracted", func() {
		BeforeEach(func() {
			n := "INV-9"
			fields.InvoiceNumber = &n
		})

		It("keeps the extracted number", func() {
			Expect(doc.Fields.InvoiceNumber).To(HaveValue(Equal("INV-9")))
		})
	})

	When("items are supplied", func() {
		BeforeEach(func() {
			items = []LineItem{{Description: "Widget", Quantity: 2, UnitPrice: 10, LineTotal: 20}}
		})

		It("carries them in order", func() {
			Expect(doc.Items).To(Equal(items))
		})

		It("copies the slice so later caller mutation cannot leak in", func() {
			items[0].Description = "changed"
			Expect(doc.Items[0].Description).To(Equal("Widget"))
		})
	})
})

var _ = Describe("Parse", func() {
	var (
		text string
		doc  Document
	)

	JustBeforeEach(func() {
		doc = Parse(text, "print.pdf")
	})

	When("given a full invoice text", func() {
		BeforeEach(func() {
			text = "Invoice No: INV-1\n" +
				"Description Qty Unit Price Total\n" +
				"Widget 2 10.00 20.00\n" +
				"SUBTOTAL 20.00\n" +
				"TOTAL (Rs.) 20.00"
		})

		It("extracts header fields and items together", func() {
			Expect(doc.Fields.InvoiceNumber).To(HaveValue(Equal("INV-1")))
			Expect(doc.Fields.Subtotal).To(HaveValue(Equal(20.00)))
			Expect(doc.Items).To(HaveLen(1))
		})

		It("is deterministic across runs", func() {
			Expect(Parse(text, "print.pdf")).To(Equal(doc))
		})
	})

	When("the invoice number never appears in the text", func() {
		BeforeEach(func() {
			text = "SUBTOTAL 20.00"
		})

		It("uses the fallback identifier", func() {
			Expect(doc.Fields.InvoiceNumber).To(HaveValue(Equal("print.pdf")))
		})
	})
})

var _ = Describe("Document.Map", func() {
	var (
		doc Document
		m   map[string]any
	)

	BeforeEach(func() {
		n := "INV-1"
		sub := 20.0
		doc = Document{
			Fields: Fields{
				InvoiceNumber: &n,
				InvoiceStatus: StatusUnpaid,
				Subtotal:      &sub,
			},
			Items: []LineItem{{Description: "Widget", Quantity: 2, UnitPrice: 10, LineTotal: 20}},
		}
	})

	JustBeforeEach(func() {
		m = doc.Map()
	})

	It("renders present fields as values", func() {
		Expect(m["invoice_number"]).To(Equal("INV-1"))
		Expect(m["subtotal"]).To(Equal(20.0))
		Expect(m["invoice_status"]).To(Equal("UNPAID"))
	})

	It("renders absent fields as nil", func() {
		Expect(m["total_amount"]).To(BeNil())
		Expect(m["supplier_name"]).To(BeNil())
	})

	It("carries the fixed key set", func() {
		for _, key := range []string{
			"invoice_number", "invoice_date", "invoice_status",
			"subtotal", "discount", "tax_rate", "total_tax",
			"balance_due", "total_amount", "currency",
			"supplier_name", "supplier_address", "supplier_email", "supplier_phone",
			"customer_name", "customer_billing_address", "customer_shipping_address",
			"payment_terms", "bank_name", "branch", "account_number",
			"payment_instructions", "items",
		} {
			Expect(m).To(HaveKey(key))
		}
	})

	It("renders items with their table order preserved", func() {
		items, ok := m["items"].([]map[string]any)
		Expect(ok).To(BeTrue())
		Expect(items).To(HaveLen(1))
		Expect(items[0]["description"]).To(Equal("Widget"))
		Expect(items[0]["quantity"]).To(Equal(2))
	})
})
