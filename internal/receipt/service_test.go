package receipt

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/receipt-ledger/internal/scanning"
)

var _ = Describe("Service", func() {
	var (
		db      *mockDB
		storage *mockStorage
		parser  *mockParser
		idGen   *mockIDGenerator
		timeSrc *mockTimeSource
		service *Service
		ctx     context.Context
	)

	BeforeEach(func() {
		db = newMockDB()
		storage = newMockStorage()
		parser = newMockParser()
		idGen = &mockIDGenerator{id: "test-id-123"}
		timeSrc = &mockTimeSource{now: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)}
		service = NewServiceWithDeps(db, parser, storage, idGen, timeSrc)
		ctx = context.Background()
	})

	Describe("ProcessReceipt", func() {
		var (
			filename    string
			data        []byte
			contentType string
			receipt     *Receipt
			err         error
		)

		BeforeEach(func() {
			filename = "DMart bill (1).txt"
			data = []byte("DMART\nTotal: Rs. 1,499.00")
			contentType = "text/plain"
		})

		JustBeforeEach(func() {
			receipt, err = service.ProcessReceipt(ctx, filename, data, contentType)
		})

		When("processing succeeds", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should set the receipt ID and timestamps", func() {
				Expect(receipt.ID).To(Equal("test-id-123"))
				Expect(receipt.CreatedAt).To(Equal(timeSrc.now))
				Expect(receipt.UpdatedAt).To(Equal(timeSrc.now))
			})

			It("should copy the extracted fields", func() {
				Expect(receipt.Vendor).To(Equal("Dmart"))
				Expect(receipt.Amount.StringFixed(2)).To(Equal("1499.00"))
				Expect(receipt.Category).To(Equal(Groceries))
				Expect(receipt.TransactionDate).To(Equal(day(2024, 3, 12)))
				Expect(receipt.ConfidenceScore).To(Equal(0.8))
			})

			It("should pass the original filename to the parser", func() {
				Expect(parser.name).To(Equal("DMart bill (1).txt"))
			})

			It("should store the file under a sanitized name", func() {
				Expect(receipt.Filename).To(Equal("test-id-123_DMart bill 1.txt"))
				Expect(storage.files).To(HaveKeyWithValue("test-id-123_DMart bill 1.txt", data))
			})

			It("should save the receipt to the database", func() {
				saved, getErr := db.GetReceipt("test-id-123")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(saved).To(Equal(receipt))
			})
		})

		When("the upload is not an accepted type", func() {
			BeforeEach(func() {
				filename = "receipt.docx"
			})

			It("returns validation errors without storing anything", func() {
				var validationErrs ValidationErrors
				Expect(errors.As(err, &validationErrs)).To(BeTrue())
				Expect(storage.files).To(BeEmpty())
				Expect(parser.calls).To(BeZero())
			})
		})

		When("HEIC uploads are enabled", func() {
			BeforeEach(func() {
				filename = "IMG_0001.HEIC"
				service.SetUploadRules(UploadRules{AllowHEIC: true})
			})

			It("accepts the photo", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(receipt.Filename).To(Equal("test-id-123_IMG_0001.heic"))
			})
		})

		When("storage save fails", func() {
			var setupErr error

			BeforeEach(func() {
				setupErr = errors.New("storage error")
				storage.saveErr = setupErr
			})

			It("returns a processing error", func() {
				var procErr *ProcessingError
				Expect(errors.As(err, &procErr)).To(BeTrue())
				Expect(err).To(MatchError(setupErr))
			})
		})

		When("the parser fails", func() {
			var setupErr error

			BeforeEach(func() {
				setupErr = &ProcessingError{Err: errors.New("ocr crashed")}
				parser.err = setupErr
			})

			It("returns the error", func() {
				Expect(err).To(Equal(setupErr))
			})

			It("cleans up the saved file", func() {
				Expect(storage.files).To(BeEmpty())
			})
		})

		When("the extracted fields are invalid", func() {
			BeforeEach(func() {
				parser.fields.Amount = dec("0")
			})

			It("returns validation errors", func() {
				var validationErrs ValidationErrors
				Expect(errors.As(err, &validationErrs)).To(BeTrue())
				Expect(validationErrs[0].Field).To(Equal("amount"))
			})

			It("cleans up the saved file and saves nothing", func() {
				Expect(storage.files).To(BeEmpty())
				Expect(db.receipts).To(BeEmpty())
			})
		})

		When("the database save fails", func() {
			BeforeEach(func() {
				db.saveErr = errors.New("disk full")
			})

			It("returns a processing error and cleans up", func() {
				var procErr *ProcessingError
				Expect(errors.As(err, &procErr)).To(BeTrue())
				Expect(storage.files).To(BeEmpty())
			})
		})

		When("the file is a corrupt PDF", func() {
			BeforeEach(func() {
				filename = "statement.pdf"
				data = []byte("not really a pdf")
				extractor := NewExtractorWithDeps(scanning.NewAcquirer(nil, nil), timeSrc)
				service = NewServiceWithDeps(db, extractor, storage, idGen, timeSrc)
			})

			It("rejects the fallback record", func() {
				var validationErrs ValidationErrors
				Expect(errors.As(err, &validationErrs)).To(BeTrue())
				Expect(validationErrs).To(ContainElement(HaveField("Field", "amount")))
				Expect(storage.files).To(BeEmpty())
			})
		})
	})

	Describe("GetReceipt", func() {
		When("the receipt exists", func() {
			BeforeEach(func() {
				db.add(&Receipt{ID: "r1", Vendor: "Dmart"})
			})

			It("returns it", func() {
				receipt, err := service.GetReceipt("r1")
				Expect(err).NotTo(HaveOccurred())
				Expect(receipt.Vendor).To(Equal("Dmart"))
			})
		})

		When("the receipt does not exist", func() {
			It("returns ErrNotFound", func() {
				_, err := service.GetReceipt("missing")
				Expect(err).To(MatchError(ErrNotFound))
			})
		})
	})

	Describe("UpdateReceipt", func() {
		var (
			update  ReceiptUpdate
			receipt *Receipt
			err     error
		)

		BeforeEach(func() {
			db.add(&Receipt{
				ID:              "r1",
				Vendor:          "Dmart",
				TransactionDate: day(2024, 3, 12),
				Amount:          dec("1499.00"),
				Category:        Groceries,
				RawText:         "DMART",
				ConfidenceScore: 0.8,
				CreatedAt:       day(2024, 3, 12),
				UpdatedAt:       day(2024, 3, 12),
			})
			update = ReceiptUpdate{}
		})

		JustBeforeEach(func() {
			receipt, err = service.UpdateReceipt("r1", update)
		})

		When("fields are changed", func() {
			BeforeEach(func() {
				vendor := "  Big Bazaar "
				amount := dec("250.5")
				category := Shopping
				update = ReceiptUpdate{Vendor: &vendor, Amount: &amount, Category: &category}
			})

			It("applies and normalizes them", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(receipt.Vendor).To(Equal("Big Bazaar"))
				Expect(receipt.Amount.StringFixed(2)).To(Equal("250.50"))
				Expect(receipt.Category).To(Equal(Shopping))
			})

			It("leaves the other fields alone", func() {
				Expect(receipt.TransactionDate).To(Equal(day(2024, 3, 12)))
				Expect(receipt.RawText).To(Equal("DMART"))
				Expect(receipt.ConfidenceScore).To(Equal(0.8))
				Expect(receipt.CreatedAt).To(Equal(day(2024, 3, 12)))
			})

			It("bumps the update time and saves", func() {
				Expect(receipt.UpdatedAt).To(Equal(timeSrc.now))
				Expect(db.receipts["r1"].Vendor).To(Equal("Big Bazaar"))
			})
		})

		When("the update is invalid", func() {
			BeforeEach(func() {
				amount := dec("-1")
				update = ReceiptUpdate{Amount: &amount}
			})

			It("returns validation errors and keeps the stored receipt", func() {
				var validationErrs ValidationErrors
				Expect(errors.As(err, &validationErrs)).To(BeTrue())
				Expect(db.receipts["r1"].Amount.StringFixed(2)).To(Equal("1499.00"))
			})
		})

		When("the receipt does not exist", func() {
			JustBeforeEach(func() {
				_, err = service.UpdateReceipt("missing", update)
			})

			It("returns ErrNotFound", func() {
				Expect(err).To(MatchError(ErrNotFound))
			})
		})
	})

	Describe("DeleteReceipt", func() {
		BeforeEach(func() {
			db.add(&Receipt{ID: "r1", Filename: "r1_dmart.txt"})
			storage.files["r1_dmart.txt"] = []byte("DMART")
		})

		It("removes the receipt and its file", func() {
			Expect(service.DeleteReceipt("r1")).To(Succeed())
			Expect(db.receipts).NotTo(HaveKey("r1"))
			Expect(storage.files).NotTo(HaveKey("r1_dmart.txt"))
		})

		When("the file is already gone", func() {
			BeforeEach(func() {
				delete(storage.files, "r1_dmart.txt")
			})

			It("still removes the receipt", func() {
				Expect(service.DeleteReceipt("r1")).To(Succeed())
				Expect(db.receipts).NotTo(HaveKey("r1"))
			})
		})

		When("the receipt does not exist", func() {
			It("returns ErrNotFound", func() {
				Expect(service.DeleteReceipt("missing")).To(MatchError(ErrNotFound))
			})
		})
	})

	Describe("GetReceiptFile", func() {
		BeforeEach(func() {
			db.add(&Receipt{ID: "r1", Filename: "r1_dmart.txt", ContentType: "text/plain"})
			storage.files["r1_dmart.txt"] = []byte("DMART")
		})

		It("returns the data and content type", func() {
			data, contentType, err := service.GetReceiptFile("r1")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("DMART"))
			Expect(contentType).To(Equal("text/plain"))
		})

		When("the file is missing", func() {
			BeforeEach(func() {
				delete(storage.files, "r1_dmart.txt")
			})

			It("returns ErrNotFound", func() {
				_, _, err := service.GetReceiptFile("r1")
				Expect(err).To(MatchError(ErrNotFound))
			})
		})

		When("the file cannot be read", func() {
			BeforeEach(func() {
				storage.getErr = errors.New("disk failure")
			})

			It("returns the storage error", func() {
				_, _, err := service.GetReceiptFile("r1")
				Expect(err).To(MatchError(ContainSubstring("getting receipt file")))
				Expect(err).NotTo(MatchError(ErrNotFound))
			})
		})
	})
})

var _ = Describe("sanitizeFilename", func() {
	DescribeTable("names",
		func(input, want string) {
			Expect(sanitizeFilename(input)).To(Equal(want))
		},
		Entry("plain", "receipt.pdf", "receipt.pdf"),
		Entry("special characters", "bill #42 (copy).PDF", "bill 42 copy.pdf"),
		Entry("directories", "../../etc/passwd.txt", "passwd.txt"),
		Entry("nothing left", "###.png", "receipt.png"),
	)
})
