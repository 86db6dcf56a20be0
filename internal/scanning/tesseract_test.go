package scanning

import (
	"context"
	"errors"
	"image"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Tesseract", func() {
	var (
		runner  *mockRunner
		lookErr error
		cfg     TesseractConfig
		backend *Tesseract
		text    string
		err     error
	)

	BeforeEach(func() {
		runner = &mockRunner{stdout: []byte("BIG BAZAAR\nTotal 250.00\n")}
		lookErr = nil
		cfg = TesseractConfig{}
	})

	JustBeforeEach(func() {
		backend = NewTesseractWithRunner(cfg, runner, func(name string) (string, error) {
			if lookErr != nil {
				return "", lookErr
			}
			return "/usr/bin/" + name, nil
		})
		text, err = backend.RecognizeText(context.Background(), image.NewGray(image.Rect(0, 0, 2, 2)))
	})

	When("tesseract is installed", func() {
		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should return stdout", func() {
			Expect(text).To(Equal("BIG BAZAAR\nTotal 250.00\n"))
		})

		It("should run the resolved binary with the default language", func() {
			Expect(runner.name).To(Equal("/usr/bin/tesseract"))
			Expect(runner.args).To(HaveLen(4))
			Expect(runner.args[1:]).To(Equal([]string{"stdout", "-l", "eng"}))
			Expect(runner.args[0]).To(HaveSuffix("page.png"))
		})
	})

	When("a tessdata dir and language are configured", func() {
		BeforeEach(func() {
			cfg = TesseractConfig{Lang: "eng+hin", TessdataDir: "/opt/tessdata"}
		})

		It("should pass them to tesseract", func() {
			Expect(runner.args[1:]).To(Equal([]string{"stdout", "-l", "eng+hin", "--tessdata-dir", "/opt/tessdata"}))
		})
	})

	When("tesseract is not installed", func() {
		BeforeEach(func() {
			lookErr = errors.New("executable file not found in $PATH")
		})

		It("returns ErrOCRUnavailable", func() {
			Expect(err).To(MatchError(ErrOCRUnavailable))
		})

		It("should not run anything", func() {
			Expect(runner.name).To(BeEmpty())
		})
	})

	When("tesseract fails", func() {
		BeforeEach(func() {
			runner.err = errors.New("exit status 1")
			runner.stderr = []byte("Error opening data file")
		})

		It("returns the error with stderr", func() {
			Expect(err).To(HaveOccurred())
			Expect(err).NotTo(MatchError(ErrOCRUnavailable))
			Expect(err.Error()).To(ContainSubstring("Error opening data file"))
		})
	})
})
