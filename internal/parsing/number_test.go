package parsing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Amount", func() {
	var (
		token string
		value float64
		err   error
	)

	JustBeforeEach(func() {
		value, err = Amount(token)
	})

	When("the token has thousands separators", func() {
		BeforeEach(func() {
			token = "135,000.00"
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("returns the arithmetic value with separators removed", func() {
			Expect(value).To(Equal(135000.00))
		})
	})

	When("the token carries a currency symbol", func() {
		BeforeEach(func() {
			token = "Rs. 1,250.50"
		})

		It("strips the symbol", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal(1250.50))
		})
	})

	When("the token is a lone dash placeholder", func() {
		BeforeEach(func() {
			token = "-"
		})

		It("normalizes to zero rather than failing", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal(0.0))
		})
	})

	When("the token is a negative value", func() {
		BeforeEach(func() {
			token = "-50.00"
		})

		It("keeps the sign", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal(-50.00))
		})
	})

	When("the token contains OCR noise characters", func() {
		BeforeEach(func() {
			token = "$~1,0O0.25" // stray tilde and a letter O
		})

		It("recovers the digit sequence", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal(100.25))
		})
	})

	When("the token has a stray extra dot", func() {
		BeforeEach(func() {
			token = "1.350.00"
		})

		It("keeps only the last dot as the decimal point", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal(1350.00))
		})
	})

	When("no digit sequence can be recovered", func() {
		BeforeEach(func() {
			token = "N/A"
		})

		It("returns ErrNotNumeric", func() {
			Expect(err).To(MatchError(ErrNotNumeric))
		})
	})
})

var _ = Describe("Rate", func() {
	var (
		token string
		value float64
		err   error
	)

	JustBeforeEach(func() {
		value, err = Rate(token)
	})

	When("the token has a percent sign", func() {
		BeforeEach(func() {
			token = "18%"
		})

		It("retains the literal numeric value", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal(18.0))
		})
	})

	When("the token is a zero rate", func() {
		BeforeEach(func() {
			token = "0.00%"
		})

		It("returns zero", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal(0.0))
		})
	})

	When("the token is a lone dash placeholder", func() {
		BeforeEach(func() {
			token = "-"
		})

		It("normalizes to zero", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal(0.0))
		})
	})

	When("the token has no digits", func() {
		BeforeEach(func() {
			token = "%"
		})

		It("returns ErrNotNumeric", func() {
			Expect(err).To(MatchError(ErrNotNumeric))
		})
	})
})
