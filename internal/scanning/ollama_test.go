package scanning

import (
	"context"
	"image"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("Ollama", func() {
	var (
		server  *ghttp.Server
		backend *Ollama
		text    string
		err     error
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		var newErr error
		backend, newErr = NewOllama(server.URL(), "llava")
		Expect(newErr).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	JustBeforeEach(func() {
		text, err = backend.RecognizeText(context.Background(), image.NewGray(image.Rect(0, 0, 2, 2)))
	})

	When("the model answers", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("POST", "/api/chat"),
				ghttp.VerifyContentType("application/json"),
				ghttp.RespondWithJSONEncoded(http.StatusOK, ollamaChatResponse{
					Message: ollamaMessage{Role: "assistant", Content: "```\nSWIGGY\nTotal ₹ 320.00\n```"},
					Done:    true,
				}),
			))
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should strip markdown fences from the transcript", func() {
			Expect(text).To(Equal("SWIGGY\nTotal ₹ 320.00"))
		})

		It("should send the image with the request", func() {
			Expect(server.ReceivedRequests()).To(HaveLen(1))
		})
	})

	When("the API returns an error status", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, "model not loaded"))
		})

		It("returns the error", func() {
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("status 500"))
			Expect(err).NotTo(MatchError(ErrOCRUnavailable))
		})
	})

	When("the server cannot be reached", func() {
		BeforeEach(func() {
			server.Close()
		})

		It("reports the backend as unavailable", func() {
			Expect(err).To(MatchError(ErrOCRUnavailable))
		})
	})
})

var _ = Describe("Normalize", func() {
	It("returns empty input unchanged", func() {
		Expect(Normalize("")).To(BeEmpty())
	})

	It("drops separator rules and tabs", func() {
		Expect(Normalize("DMART\n-----\nItem\t\t10.00")).To(Equal("DMART\n\nItem 10.00"))
	})
})
