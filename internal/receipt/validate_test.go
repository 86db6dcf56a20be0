package receipt

import (
	"errors"
	"math"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Validate", func() {
	var (
		fields Fields
		valid  Fields
		err    error
	)

	BeforeEach(func() {
		fields = Fields{
			Vendor:          "  Dmart ",
			TransactionDate: day(2024, 3, 12),
			Amount:          dec("1499.004"),
			Category:        Groceries,
			RawText:         "DMART",
			ConfidenceScore: 0.8,
		}
	})

	JustBeforeEach(func() {
		valid, err = Validate(fields)
	})

	fieldsOf := func(err error) []string {
		var validationErrs ValidationErrors
		Expect(errors.As(err, &validationErrs)).To(BeTrue())
		names := make([]string, len(validationErrs))
		for i, e := range validationErrs {
			names[i] = e.Field
		}
		return names
	}

	When("the fields are valid", func() {
		It("normalizes them", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(valid.Vendor).To(Equal("Dmart"))
			Expect(valid.Amount.StringFixed(2)).To(Equal("1499.00"))
			Expect(valid.Category).To(Equal(Groceries))
			Expect(valid.RawText).To(Equal("DMART"))
		})
	})

	When("the vendor is blank", func() {
		BeforeEach(func() {
			fields.Vendor = " \t "
		})

		It("rejects the vendor", func() {
			Expect(fieldsOf(err)).To(Equal([]string{"vendor"}))
		})
	})

	When("the vendor is too long", func() {
		BeforeEach(func() {
			fields.Vendor = strings.Repeat("v", 201)
		})

		It("rejects the vendor", func() {
			Expect(fieldsOf(err)).To(Equal([]string{"vendor"}))
		})
	})

	DescribeTable("amounts",
		func(amount string, ok bool) {
			fields.Amount = dec(amount)
			_, err := Validate(fields)
			if ok {
				Expect(err).NotTo(HaveOccurred())
			} else {
				Expect(fieldsOf(err)).To(Equal([]string{"amount"}))
			}
		},
		Entry("zero", "0", false),
		Entry("negative", "-5", false),
		Entry("rounds to zero", "0.001", false),
		Entry("smallest", "0.01", true),
		Entry("largest", "99999999.99", true),
		Entry("too large", "100000000", false),
	)

	DescribeTable("confidence scores",
		func(score float64, ok bool) {
			fields.ConfidenceScore = score
			_, err := Validate(fields)
			if ok {
				Expect(err).NotTo(HaveOccurred())
			} else {
				Expect(fieldsOf(err)).To(Equal([]string{"confidence_score"}))
			}
		},
		Entry("zero", 0.0, true),
		Entry("one", 1.0, true),
		Entry("negative", -0.1, false),
		Entry("above one", 1.1, false),
		Entry("not a number", math.NaN(), false),
		Entry("infinite", math.Inf(1), false),
	)

	When("the category is absent", func() {
		BeforeEach(func() {
			fields.Category = ""
		})

		It("defaults to other", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(valid.Category).To(Equal(Other))
		})
	})

	When("the category is unknown", func() {
		BeforeEach(func() {
			fields.Category = "travel"
		})

		It("rejects the category", func() {
			Expect(fieldsOf(err)).To(Equal([]string{"category"}))
		})
	})

	When("the date is missing", func() {
		BeforeEach(func() {
			fields.TransactionDate = day(1, 1, 1)
		})

		It("rejects the date", func() {
			Expect(fieldsOf(err)).To(Equal([]string{"transaction_date"}))
		})
	})

	When("several fields are invalid", func() {
		BeforeEach(func() {
			fields.Vendor = ""
			fields.Amount = dec("0")
			fields.Category = "nope"
		})

		It("reports all of them", func() {
			Expect(fieldsOf(err)).To(Equal([]string{"vendor", "amount", "category"}))
			Expect(err.Error()).To(ContainSubstring("vendor name cannot be empty"))
			Expect(err.Error()).To(ContainSubstring("amount must be positive"))
		})
	})
})

var _ = Describe("ValidateUpload", func() {
	DescribeTable("files",
		func(name string, size int64, ok bool) {
			err := ValidateUpload(name, size)
			if ok {
				Expect(err).NotTo(HaveOccurred())
			} else {
				var validationErrs ValidationErrors
				Expect(errors.As(err, &validationErrs)).To(BeTrue())
			}
		},
		Entry("jpg", "receipt.jpg", int64(1024), true),
		Entry("upper-case extension", "RECEIPT.PDF", int64(1024), true),
		Entry("txt", "notes.txt", int64(10), true),
		Entry("exactly 10 MiB", "scan.png", int64(10<<20), true),
		Entry("over 10 MiB", "scan.png", int64(10<<20+1), false),
		Entry("docx", "receipt.docx", int64(1024), false),
		Entry("no extension", "receipt", int64(1024), false),
		Entry("heic by default", "photo.heic", int64(1024), false),
	)

	It("accepts HEIC photos when allowed", func() {
		rules := UploadRules{MaxSize: 5 << 20, AllowHEIC: true}
		Expect(rules.Validate("photo.HEIC", 1024)).To(Succeed())
		Expect(rules.Validate("photo.heif", 6<<20)).To(HaveOccurred())
	})

	It("lists the allowed types in the message", func() {
		err := ValidateUpload("receipt.docx", 1)
		Expect(err).To(MatchError(ContainSubstring(".jpg, .jpeg, .png, .pdf, .txt")))
	})
})

var _ = Describe("Category", func() {
	It("recognizes the closed set", func() {
		for _, c := range AllCategories() {
			Expect(Category(c).IsValid()).To(BeTrue())
		}
		Expect(Category("Groceries").IsValid()).To(BeFalse())
	})

	It("parses loosely", func() {
		c, ok := ParseCategory(" Groceries ")
		Expect(ok).To(BeTrue())
		Expect(c).To(Equal(Groceries))

		c, ok = ParseCategory("travel")
		Expect(ok).To(BeFalse())
		Expect(c).To(Equal(Other))
	})
})
