package files

import "time"

// FileResponse is the outward-facing representation of an uploaded file.
type FileResponse struct {
	FileID     string    `json:"fileId"`
	FileName   string    `json:"fileName"`
	Kind       string    `json:"kind"`
	SizeBytes  int64     `json:"sizeBytes"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func toResponse(file File) FileResponse {
	return FileResponse{
		FileID:     file.ID,
		FileName:   file.FileName,
		Kind:       file.Kind,
		SizeBytes:  file.SizeBytes,
		UploadedAt: file.CreatedAt,
	}
}

func toResponseList(list []File) []FileResponse {
	out := make([]FileResponse, 0, len(list))
	for _, file := range list {
		out = append(out, toResponse(file))
	}
	return out
}
