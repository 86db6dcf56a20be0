package scanning

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	if err != nil {
		slog.Error("exec failed",
			"cmd", name,
			"args", strings.Join(args, " "),
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
			"stderr", truncate(errb.String(), 8<<10),
		)
	} else {
		slog.Debug("exec ok",
			"cmd", name,
			"duration_ms", time.Since(start).Milliseconds(),
			"stdout_bytes", out.Len(),
		)
	}

	return out.Bytes(), errb.Bytes(), err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}

// TesseractConfig configures the tesseract OCR backend
type TesseractConfig struct {
	Binary      string // binary name or absolute path; default "tesseract"
	Lang        string // default "eng"
	TessdataDir string
}

// Tesseract implements OCR by shelling out to the tesseract CLI
type Tesseract struct {
	cfg      TesseractConfig
	runner   Runner
	lookPath func(string) (string, error)
}

// NewTesseract creates a Tesseract backend
func NewTesseract(cfg TesseractConfig) *Tesseract {
	return NewTesseractWithRunner(cfg, execRunner{}, exec.LookPath)
}

// NewTesseractWithRunner creates a Tesseract backend with custom command hooks for testing
func NewTesseractWithRunner(cfg TesseractConfig, runner Runner, lookPath func(string) (string, error)) *Tesseract {
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	return &Tesseract{cfg: cfg, runner: runner, lookPath: lookPath}
}

// RecognizeText writes img to a temporary PNG and runs tesseract on it
func (t *Tesseract) RecognizeText(ctx context.Context, img image.Image) (string, error) {
	bin, err := t.lookPath(t.cfg.Binary)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrOCRUnavailable, t.cfg.Binary, err)
	}

	pngData, err := encodePNG(img)
	if err != nil {
		return "", err
	}

	tmpDir, err := os.MkdirTemp("", "receipt-ocr-*")
	if err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "page.png")
	if err := os.WriteFile(path, pngData, 0600); err != nil {
		return "", fmt.Errorf("writing temp image: %w", err)
	}

	// tesseract <file> stdout -l <lang>
	args := []string{path, "stdout", "-l", t.cfg.Lang}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}
	out, errb, err := t.runner.Run(ctx, bin, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}

	return string(out), nil
}

// Close is a no-op for tesseract
func (t *Tesseract) Close() error {
	return nil
}
