package intake

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
)

// Kind classifies an accepted upload for the rest of the pipeline.
type Kind string

const (
	KindImage    Kind = "image"
	KindDocument Kind = "document"
)

// DefaultMaxBytes is the upload size ceiling.
const DefaultMaxBytes = 10 << 20

// Rejection reasons.
const (
	ReasonTooLarge          = "too_large"
	ReasonBadExtension      = "bad_extension"
	ReasonTooShort          = "too_short"
	ReasonSignatureMismatch = "signature_mismatch"
)

// Rejection describes why an upload was refused. It carries a user-facing
// message alongside a stable machine reason.
type Rejection struct {
	Reason  string
	Message string
}

func (r *Rejection) Error() string { return r.Message }

var signatures = map[string][]byte{
	".pdf":  []byte("%PDF-"),
	".jpg":  {0xFF, 0xD8, 0xFF},
	".jpeg": {0xFF, 0xD8, 0xFF},
	".png":  {0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A},
	".bmp":  []byte("BM"),
}

const allowedExtensions = "pdf, jpg, jpeg, png, bmp"

// Inspect validates an untrusted upload and classifies it.
// The declared extension is never trusted on its own: the leading bytes
// must carry the matching magic signature.
func Inspect(fileName string, data []byte, maxBytes int64) (Kind, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if int64(len(data)) > maxBytes {
		return "", &Rejection{
			Reason:  ReasonTooLarge,
			Message: fmt.Sprintf("文件大小超过%dMB（当前：%.2fMB）", maxBytes>>20, float64(len(data))/1024.0/1024.0),
		}
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	sig, ok := signatures[ext]
	if !ok {
		return "", &Rejection{
			Reason:  ReasonBadExtension,
			Message: fmt.Sprintf("不支持的文件格式（仅支持：%s）", allowedExtensions),
		}
	}

	if len(data) < len(sig) {
		return "", &Rejection{
			Reason:  ReasonTooShort,
			Message: "文件内容为空或过短",
		}
	}
	if !bytes.HasPrefix(data, sig) {
		return "", &Rejection{
			Reason:  ReasonSignatureMismatch,
			Message: "文件内容与格式不匹配（疑似伪造后缀）",
		}
	}

	if ext == ".pdf" {
		return KindDocument, nil
	}
	return KindImage, nil
}
