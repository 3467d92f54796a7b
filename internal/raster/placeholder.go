package raster

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Placeholder canvas matches the A4 render size so downstream rotation and
// preset fitting treat it like any real page.
const (
	placeholderWidth  = 2100
	placeholderHeight = 2970
)

const maxReasonChars = 96

// Placeholder builds the white canvas returned when a document cannot be
// rendered. The diagnostic lines are drawn in red so a reviewer sees at a
// glance that the preview is synthetic. Output is deterministic for a given
// reason. The bitmap face covers ASCII only, so the reason is filtered to
// printable ASCII before drawing; the unfiltered reason still reaches the
// logs and the API response.
func Placeholder(reason string) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, placeholderWidth, placeholderHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	lines := []string{
		"PDF preview unavailable",
		"install poppler or check the document",
	}
	if detail := printableASCII(reason); detail != "" {
		if len(detail) > maxReasonChars {
			detail = detail[:maxReasonChars]
		}
		lines = append(lines, "reason: "+detail)
	}

	face := basicfont.Face7x13
	const lineHeight = 24
	startY := (placeholderHeight - lineHeight*len(lines)) / 2
	red := image.NewUniform(color.RGBA{R: 255, A: 255})
	for i, line := range lines {
		width := font.MeasureString(face, line).Ceil()
		d := &font.Drawer{
			Dst:  img,
			Src:  red,
			Face: face,
			Dot:  fixed.P((placeholderWidth-width)/2, startY+i*lineHeight),
		}
		d.DrawString(line)
	}
	return img
}

func printableASCII(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 0x20 && r < 0x7f {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
