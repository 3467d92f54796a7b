package certificates

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"

	"github.com/mona5211005/certificate-system/internal/intake"
	"github.com/mona5211005/certificate-system/internal/normalize"
	"github.com/mona5211005/certificate-system/internal/raster"
	"github.com/mona5211005/certificate-system/internal/shared/metrics"
	"github.com/mona5211005/certificate-system/internal/shared/telemetry"
	"github.com/mona5211005/certificate-system/internal/vision"
)

// PreviewResult is the visual half of the review pipeline: the processed
// image for the review form, plus diagnostics when the document could
// not be rendered and a placeholder stands in for it.
type PreviewResult struct {
	JPEG     []byte
	Width    int
	Height   int
	Degraded bool
	Reason   string
}

// Preview validates the upload, rasterizes documents, and applies the
// edit session's cumulative rotation and size preset.
func (s *Service) Preview(ctx context.Context, upload Upload, settings normalize.Settings) (PreviewResult, error) {
	img, degraded, reason, err := s.reviewImage(ctx, upload, settings)
	if err != nil {
		return PreviewResult{}, err
	}
	encoded, err := normalize.EncodeJPEG(img)
	if err != nil {
		return PreviewResult{}, fmt.Errorf("encode preview: %w", err)
	}
	bounds := img.Bounds()
	return PreviewResult{
		JPEG:     encoded,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Degraded: degraded,
		Reason:   reason,
	}, nil
}

// Extract runs the preview pipeline and asks the extraction service to
// prefill the ten fields. The credential is resolved per request from
// the runtime configuration; any failure on this path degrades to the
// default-filled result, never a hard error.
func (s *Service) Extract(ctx context.Context, upload Upload, settings normalize.Settings) (vision.Result, error) {
	img, _, _, err := s.reviewImage(ctx, upload, settings)
	if err != nil {
		return vision.Result{}, err
	}

	apiKey, err := s.Config.VisionKey(ctx)
	if err != nil {
		telemetry.Warn("certificates.vision_key_unavailable", map[string]any{"error": err.Error()})
		return vision.Degraded("read extraction credential: " + err.Error()), nil
	}
	return s.Extractor.Extract(ctx, img, apiKey), nil
}

// reviewImage is the shared front of Preview and Extract: intake check,
// raster or decode, then normalization. Only an intake rejection is an
// error; everything downstream degrades to a placeholder.
func (s *Service) reviewImage(ctx context.Context, upload Upload, settings normalize.Settings) (image.Image, bool, string, error) {
	kind, err := intake.Inspect(upload.FileName, upload.Data, s.MaxUploadBytes)
	if err != nil {
		return nil, false, "", err
	}

	var img image.Image
	degraded := false
	reason := ""
	if kind == intake.KindDocument {
		img, degraded, reason = s.Renderer.FirstPage(ctx, upload.Data)
	} else {
		decoded, _, decodeErr := image.Decode(bytes.NewReader(upload.Data))
		if decodeErr != nil {
			// The signature matched but the body is broken. Same
			// treatment as an unrenderable document.
			reason = "decode image: " + decodeErr.Error()
			img = raster.Placeholder(reason)
			degraded = true
			metrics.IncRenderDegraded()
			telemetry.Warn("review.decode_degraded", map[string]any{
				"file_name": upload.FileName,
				"reason":    reason,
			})
		} else {
			img = decoded
		}
	}
	return normalize.Apply(img, settings), degraded, reason, nil
}
