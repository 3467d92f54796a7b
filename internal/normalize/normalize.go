// Package normalize adjusts a rendered certificate image to the view the
// user confirmed in the editor: a cumulative rotation followed by an
// optional resize to a named paper preset.
package normalize

import (
	"bytes"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Preset names accepted by Apply. Anything else leaves dimensions unchanged.
const (
	PresetCustom = "custom"
	PresetA4     = "A4"
	PresetA5     = "A5"
)

// presetBoxes holds the target bounding box per named preset, in pixels.
var presetBoxes = map[string]struct{ W, H int }{
	PresetA4: {2100, 2970},
	PresetA5: {1480, 2100},
}

// Settings is the accumulated state of one editing session. Rotation is the
// total counter-clockwise angle in degrees; each user action adds its delta
// here rather than rotating an already-rotated image, so repeated 90-degree
// turns stay lossless.
type Settings struct {
	Rotation int
	Preset   string
}

// AddRotation returns the settings with delta degrees added to the running
// total. A delta of 0 resets the total, matching the editor's reset control.
func (s Settings) AddRotation(delta int) Settings {
	if delta == 0 {
		s.Rotation = 0
		return s
	}
	s.Rotation += delta
	return s
}

// Apply produces the final image for the session: the source rotated by the
// accumulated angle, then fitted to the preset box. The input image is never
// modified.
func Apply(img image.Image, s Settings) image.Image {
	return fit(rotate(img, s.Rotation), s.Preset)
}

func rotate(img image.Image, angle int) image.Image {
	a := ((angle % 360) + 360) % 360
	if a == 0 {
		return img
	}
	return imaging.Rotate(img, float64(a), color.White)
}

// fit scales the image so it fills the preset box in one dimension while
// staying inside it in the other. Images smaller than the box are scaled up;
// aspect ratio is always preserved.
func fit(img image.Image, preset string) image.Image {
	box, ok := presetBoxes[preset]
	if !ok {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return img
	}
	imgRatio := float64(w) / float64(h)
	boxRatio := float64(box.W) / float64(box.H)
	var newW, newH int
	if imgRatio > boxRatio {
		newW = box.W
		newH = int(float64(newW) / imgRatio)
	} else {
		newH = box.H
		newW = int(float64(newH) * imgRatio)
	}
	return imaging.Resize(img, newW, newH, imaging.Lanczos)
}

// EncodeJPEG serializes the image as quality-70 JPEG, the payload format for
// both the preview response and the vision request.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(70)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
