package certificates

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mona5211005/certificate-system/internal/files"
	"github.com/mona5211005/certificate-system/internal/intake"
	"github.com/mona5211005/certificate-system/internal/normalize"
	"github.com/mona5211005/certificate-system/internal/shared/metrics"
	"github.com/mona5211005/certificate-system/internal/shared/server/middleware"
	"github.com/mona5211005/certificate-system/internal/shared/server/respond"
	"github.com/mona5211005/certificate-system/internal/vision"
)

// Handler wires HTTP handlers to the certificates service.
type Handler struct {
	Svc   *Service
	Files *files.Service

	// ExtractLimit optionally guards the extraction route, the one call
	// that spends money on an external service. Nil disables the guard.
	ExtractLimit gin.HandlerFunc
}

func NewHandler(svc *Service, filesSvc *files.Service) *Handler {
	return &Handler{Svc: svc, Files: filesSvc}
}

// RegisterRoutes attaches certificate routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/certificates/preview", h.preview)
	if h.ExtractLimit != nil {
		rg.POST("/certificates/extract", h.ExtractLimit, h.extract)
	} else {
		rg.POST("/certificates/extract", h.extract)
	}
	rg.POST("/certificates/draft", h.draft)
	rg.POST("/certificates", h.submit)
	rg.PUT("/certificates/:id", h.updateDraft)
	rg.POST("/certificates/:id/submit", h.promote)
	rg.POST("/certificates/submit-all", h.submitAll)
	rg.GET("/certificates", h.list)
	rg.GET("/certificates/status", h.status)
	rg.GET("/files/:id/certificate", h.certificateByFile)
}

func (h *Handler) preview(c *gin.Context) {
	upload, ok := h.formUpload(c)
	if !ok {
		return
	}
	result, err := h.Svc.Preview(c.Request.Context(), upload, settingsFromForm(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, gin.H{
		"imageBase64": base64.StdEncoding.EncodeToString(result.JPEG),
		"width":       result.Width,
		"height":      result.Height,
		"degraded":    result.Degraded,
		"reason":      result.Reason,
	})
}

func (h *Handler) extract(c *gin.Context) {
	upload, ok := h.formUpload(c)
	if !ok {
		return
	}
	result, err := h.Svc.Extract(c.Request.Context(), upload, settingsFromForm(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, result)
}

func (h *Handler) draft(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	upload, ok := h.formUpload(c)
	if !ok {
		return
	}
	cert, err := h.Svc.SaveDraft(c.Request.Context(), userID, upload, fieldsFromForm(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Set("fileId", cert.FileID)
	c.Set("certificateId", cert.ID)
	respond.Created(c, gin.H{"certificate": toResponse(cert, upload.FileName)})
}

func (h *Handler) submit(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	role := middleware.UserRoleFromContext(c)
	upload, ok := h.formUpload(c)
	if !ok {
		return
	}
	cert, err := h.Svc.Submit(c.Request.Context(), userID, role, upload, fieldsFromForm(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Set("fileId", cert.FileID)
	c.Set("certificateId", cert.ID)
	respond.Created(c, gin.H{"certificate": toResponse(cert, upload.FileName)})
}

func (h *Handler) updateDraft(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var fields fieldsRequest
	if err := c.ShouldBindJSON(&fields); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	cert, err := h.Svc.UpdateDraft(c.Request.Context(), userID, c.Param("id"), fields.toFields())
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"certificate": toResponse(cert, "")})
}

func (h *Handler) promote(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	role := middleware.UserRoleFromContext(c)

	cert, err := h.Svc.PromoteDraft(c.Request.Context(), userID, role, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Set("certificateId", cert.ID)
	respond.OK(c, gin.H{"certificate": toResponse(cert, "")})
}

func (h *Handler) submitAll(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	role := middleware.UserRoleFromContext(c)

	affected, err := h.Svc.BatchSubmitDrafts(c.Request.Context(), userID, role)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"submittedCount": affected})
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	role := middleware.UserRoleFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	certs, err := h.Svc.ListByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "storage_failure", "failed to list certificates", nil)
		return
	}

	resp := make([]CertificateResponse, 0, len(certs))
	for _, cert := range certs {
		fileName := ""
		if file, err := h.Files.Get(c.Request.Context(), userID, role, cert.FileID); err == nil {
			fileName = file.FileName
		}
		resp = append(resp, toResponse(cert, fileName))
	}
	respond.OK(c, gin.H{"certificates": resp})
}

func (h *Handler) status(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	status, err := h.Svc.Status(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "storage_failure", "failed to read status", nil)
		return
	}
	respond.OK(c, gin.H{
		"draftCount":     status.DraftCount,
		"submittedCount": status.SubmittedCount,
	})
}

func (h *Handler) certificateByFile(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	role := middleware.UserRoleFromContext(c)
	fileID := c.Param("id")

	cert, err := h.Svc.GetByFile(c.Request.Context(), userID, role, fileID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	fileName := ""
	if file, err := h.Files.Get(c.Request.Context(), userID, role, fileID); err == nil {
		fileName = file.FileName
	}
	respond.OK(c, gin.H{"certificate": toResponse(cert, fileName)})
}

// formUpload reads the multipart file part. On failure it writes the
// error response itself and reports false.
func (h *Handler) formUpload(c *gin.Context) (Upload, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.Svc.MaxUploadBytes+(1<<20))

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return Upload{}, false
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return Upload{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return Upload{}, false
	}
	return Upload{FileName: fileHeader.Filename, Data: data}, true
}

// fieldsRequest mirrors the ten wire keys for the JSON edit body.
type fieldsRequest struct {
	StudentCollege     string `json:"student_college"`
	CompetitionProject string `json:"competition_project"`
	StudentID          string `json:"student_id"`
	StudentName        string `json:"student_name"`
	AwardCategory      string `json:"award_category"`
	AwardLevel         string `json:"award_level"`
	CompetitionType    string `json:"competition_type"`
	Organizer          string `json:"organizer"`
	AwardTime          string `json:"award_time"`
	TutorName          string `json:"tutor_name"`
}

func (r fieldsRequest) toFields() vision.Fields {
	return vision.Fields{
		StudentCollege:     strings.TrimSpace(r.StudentCollege),
		CompetitionProject: strings.TrimSpace(r.CompetitionProject),
		StudentID:          strings.TrimSpace(r.StudentID),
		StudentName:        strings.TrimSpace(r.StudentName),
		AwardCategory:      strings.TrimSpace(r.AwardCategory),
		AwardLevel:         strings.TrimSpace(r.AwardLevel),
		CompetitionType:    strings.TrimSpace(r.CompetitionType),
		Organizer:          strings.TrimSpace(r.Organizer),
		AwardTime:          strings.TrimSpace(r.AwardTime),
		TutorName:          strings.TrimSpace(r.TutorName),
	}
}

func fieldsFromForm(c *gin.Context) vision.Fields {
	get := func(key string) string { return strings.TrimSpace(c.PostForm(key)) }
	return vision.Fields{
		StudentCollege:     get("student_college"),
		CompetitionProject: get("competition_project"),
		StudentID:          get("student_id"),
		StudentName:        get("student_name"),
		AwardCategory:      get("award_category"),
		AwardLevel:         get("award_level"),
		CompetitionType:    get("competition_type"),
		Organizer:          get("organizer"),
		AwardTime:          get("award_time"),
		TutorName:          get("tutor_name"),
	}
}

func settingsFromForm(c *gin.Context) normalize.Settings {
	rotation := 0
	if v := c.PostForm("rotation"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			rotation = parsed
		}
	}
	preset := strings.TrimSpace(c.PostForm("preset"))
	if preset == "" {
		preset = normalize.PresetCustom
	}
	return normalize.Settings{Rotation: rotation, Preset: preset}
}

// writeError maps pipeline errors onto the shared error taxonomy.
func (h *Handler) writeError(c *gin.Context, err error) {
	var rejection *intake.Rejection
	var validation *ValidationError
	switch {
	case errors.As(err, &rejection):
		metrics.IncUploadRejected()
		respond.Error(c, http.StatusBadRequest, "input_rejected", rejection.Message, map[string]string{"reason": rejection.Reason})
	case errors.As(err, &validation):
		respond.Error(c, http.StatusUnprocessableEntity, "validation_failed", "字段校验失败", validation.Violations)
	case errors.Is(err, ErrDeadlinePassed):
		respond.Error(c, http.StatusForbidden, "deadline_exceeded", ErrDeadlinePassed.Error(), nil)
	case errors.Is(err, ErrDuplicateRecord):
		respond.Error(c, http.StatusConflict, "duplicate_record", ErrDuplicateRecord.Error(), nil)
	case errors.Is(err, ErrNotEditable):
		respond.Error(c, http.StatusConflict, "not_editable", "提交后的证书记录不可修改", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "certificate not found", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "storage_failure", "operation failed", nil)
	}
}
