package intake

import (
	"bytes"
	"errors"
	"testing"
)

var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

func pngBlob(extra int) []byte {
	blob := append([]byte(nil), pngSignature...)
	return append(blob, bytes.Repeat([]byte{0x00}, extra)...)
}

func TestInspectClassifiesValidUploads(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		data     []byte
		want     Kind
	}{
		{name: "pdf", fileName: "cert.pdf", data: []byte("%PDF-1.7 rest"), want: KindDocument},
		{name: "jpg", fileName: "cert.jpg", data: []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}, want: KindImage},
		{name: "jpeg uppercase ext", fileName: "CERT.JPEG", data: []byte{0xFF, 0xD8, 0xFF, 0xE1}, want: KindImage},
		{name: "png", fileName: "cert.png", data: pngBlob(16), want: KindImage},
		{name: "bmp", fileName: "cert.bmp", data: []byte("BM and pixels"), want: KindImage},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			kind, err := Inspect(tt.fileName, tt.data, 0)
			if err != nil {
				t.Fatalf("Inspect: %v", err)
			}
			if kind != tt.want {
				t.Fatalf("Inspect(%s) = %s, want %s", tt.fileName, kind, tt.want)
			}
		})
	}
}

func TestInspectRejections(t *testing.T) {
	tests := []struct {
		name       string
		fileName   string
		data       []byte
		maxBytes   int64
		wantReason string
	}{
		{name: "oversized", fileName: "cert.jpg", data: bytes.Repeat([]byte{0xFF}, 32), maxBytes: 16, wantReason: ReasonTooLarge},
		{name: "unknown extension", fileName: "cert.gif", data: []byte("GIF89a"), wantReason: ReasonBadExtension},
		{name: "no extension", fileName: "cert", data: []byte("%PDF-"), wantReason: ReasonBadExtension},
		{name: "shorter than signature", fileName: "cert.png", data: pngSignature[:4], wantReason: ReasonTooShort},
		{name: "empty blob", fileName: "cert.pdf", data: nil, wantReason: ReasonTooShort},
		{name: "forged extension", fileName: "cert.pdf", data: pngBlob(16), wantReason: ReasonSignatureMismatch},
		{name: "jpg bytes named png", fileName: "cert.png", data: []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01, 0x02, 0x03, 0x04}, wantReason: ReasonSignatureMismatch},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := Inspect(tt.fileName, tt.data, tt.maxBytes)
			if err == nil {
				t.Fatalf("Inspect(%s) expected rejection", tt.name)
			}
			var rej *Rejection
			if !errors.As(err, &rej) {
				t.Fatalf("expected *Rejection, got %T", err)
			}
			if rej.Reason != tt.wantReason {
				t.Fatalf("reason = %s, want %s", rej.Reason, tt.wantReason)
			}
			if rej.Message == "" {
				t.Fatalf("expected a user-facing message")
			}
		})
	}
}

func TestInspectSignatureBeatsExtension(t *testing.T) {
	// Identical bytes, different declared extensions: acceptance must follow
	// the signature, not the name.
	data := []byte("%PDF-1.4")
	if _, err := Inspect("cert.pdf", data, 0); err != nil {
		t.Fatalf("matching signature rejected: %v", err)
	}
	if _, err := Inspect("cert.jpg", data, 0); err == nil {
		t.Fatalf("mismatched signature accepted")
	}
}
