package certificates

import (
	"time"

	"github.com/mona5211005/certificate-system/internal/vision"
)

// CertificateResponse is the outward-facing representation of a record.
// The ten extraction fields keep their wire names because they are the
// contract shared with the extraction service and the review form.
type CertificateResponse struct {
	CertificateID string        `json:"certificateId"`
	FileID        string        `json:"fileId"`
	FileName      string        `json:"fileName,omitempty"`
	Fields        vision.Fields `json:"fields"`
	Submitted     bool          `json:"submitted"`
	SubmittedAt   *time.Time    `json:"submittedAt,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

func toResponse(cert Certificate, fileName string) CertificateResponse {
	return CertificateResponse{
		CertificateID: cert.ID,
		FileID:        cert.FileID,
		FileName:      fileName,
		Fields:        cert.Fields,
		Submitted:     cert.Submitted,
		SubmittedAt:   cert.SubmittedAt,
		CreatedAt:     cert.CreatedAt,
		UpdatedAt:     cert.UpdatedAt,
	}
}
