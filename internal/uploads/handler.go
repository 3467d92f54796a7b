package uploads

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mona5211005/certificate-system/internal/intake"
	"github.com/mona5211005/certificate-system/internal/shared/metrics"
	"github.com/mona5211005/certificate-system/internal/shared/server/respond"
	"github.com/mona5211005/certificate-system/internal/shared/telemetry"
)

// Handler exposes the standalone upload pre-check. Clients can probe a
// file before the full draft round trip; the same checks run again on
// every endpoint that accepts a file.
type Handler struct {
	MaxUploadBytes int64
}

func NewHandler(maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = intake.DefaultMaxBytes
	}
	return &Handler{MaxUploadBytes: maxUploadBytes}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/uploads/inspect", h.inspect)
}

type inspectResponse struct {
	Kind      string `json:"kind"`
	FileName  string `json:"fileName"`
	SizeBytes int64  `json:"sizeBytes"`
}

func (h *Handler) inspect(c *gin.Context) {
	// MaxBytesReader bounds the whole request body, so a lying
	// Content-Length cannot buffer more than the ceiling. Inspect
	// re-checks the decoded part against the same limit.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes+(1<<20))

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	kind, err := intake.Inspect(fileHeader.Filename, data, h.MaxUploadBytes)
	if err != nil {
		var rej *intake.Rejection
		if errors.As(err, &rej) {
			metrics.IncUploadRejected()
			telemetry.Warn("uploads.rejected", map[string]any{
				"reason":     rej.Reason,
				"file_name":  fileHeader.Filename,
				"size_bytes": len(data),
				"request_id": c.GetString("requestId"),
			})
			respond.Error(c, http.StatusBadRequest, "input_rejected", rej.Message, map[string]string{"reason": rej.Reason})
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "inspection failed", nil)
		return
	}

	respond.JSON(c, http.StatusOK, inspectResponse{
		Kind:      string(kind),
		FileName:  fileHeader.Filename,
		SizeBytes: int64(len(data)),
	})
}
