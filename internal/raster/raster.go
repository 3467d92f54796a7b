// Package raster converts the first page of an uploaded PDF into an image
// the review pipeline can rotate, resize, and send to extraction. Rendering
// is assistive: any failure degrades to a diagnostic placeholder instead of
// aborting the submission flow.
package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/mona5211005/certificate-system/internal/shared/metrics"
	"github.com/mona5211005/certificate-system/internal/shared/telemetry"
)

const (
	DefaultDPI          = 300
	DefaultPdftoppmPath = "pdftoppm"
)

// Renderer shells out to poppler's pdftoppm for rasterization.
type Renderer struct {
	PdftoppmPath string
	DPI          int
}

func NewRenderer(pdftoppmPath string, dpi int) *Renderer {
	if pdftoppmPath == "" {
		pdftoppmPath = DefaultPdftoppmPath
	}
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Renderer{PdftoppmPath: pdftoppmPath, DPI: dpi}
}

// FirstPage renders page one of the document at the configured DPI. It
// never returns an error: when rendering is impossible the result is a
// placeholder image, the boolean reports the degradation, and the string
// carries the diagnostic (empty on a clean render).
func (r *Renderer) FirstPage(ctx context.Context, pdfData []byte) (image.Image, bool, string) {
	if reason := probe(pdfData); reason != "" {
		metrics.IncRenderDegraded()
		telemetry.Warn("raster.degraded", map[string]any{"stage": "probe", "reason": reason})
		return Placeholder(reason), true, reason
	}
	img, err := r.render(ctx, pdfData)
	if err != nil {
		metrics.IncRenderDegraded()
		telemetry.Warn("raster.degraded", map[string]any{"stage": "render", "reason": err.Error()})
		return Placeholder(err.Error()), true, err.Error()
	}
	return img, false, ""
}

// probe rejects documents the renderer would choke on before paying for a
// subprocess: broken structure or an empty page tree. The parser panics on
// some malformed xref tables, so the check runs behind a recover.
func probe(data []byte) (reason string) {
	defer func() {
		if p := recover(); p != nil {
			reason = fmt.Sprintf("document parse panic: %v", p)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "unreadable document: " + err.Error()
	}
	if reader.NumPage() < 1 {
		return "document has no pages"
	}
	return ""
}

func (r *Renderer) render(ctx context.Context, pdfData []byte) (image.Image, error) {
	dir, err := os.MkdirTemp("", "raster-*")
	if err != nil {
		return nil, fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	inPath := filepath.Join(dir, "page.pdf")
	if err := os.WriteFile(inPath, pdfData, 0o600); err != nil {
		return nil, fmt.Errorf("write temp pdf: %w", err)
	}
	outRoot := filepath.Join(dir, "page")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.PdftoppmPath,
		"-png", "-singlefile", "-f", "1", "-l", "1",
		"-r", strconv.Itoa(r.DPI), inPath, outRoot)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdftoppm: %v: %s", err, firstLine(stderr.String()))
	}

	rendered, err := os.ReadFile(outRoot + ".png")
	if err != nil {
		return nil, fmt.Errorf("read rendered page: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(rendered))
	if err != nil {
		return nil, fmt.Errorf("decode rendered page: %w", err)
	}
	return img, nil
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return "no diagnostic output"
}
