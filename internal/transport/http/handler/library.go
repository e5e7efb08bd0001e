package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"holistica/internal/app"
	"holistica/internal/pkg/convert"
	"holistica/internal/transport/http/response"
)

type LibraryHandler struct {
	library *app.LibraryService
}

type IngestDocumentRequest struct {
	Filename string `json:"filename" binding:"required,max=256"`
	Text     string `json:"text" binding:"required"`
}

func NewLibraryHandler(library *app.LibraryService) *LibraryHandler {
	return &LibraryHandler{library: library}
}

// IngestDocument ingests already-converted plain text under a filename.
func (h *LibraryHandler) IngestDocument(c *gin.Context) {
	var req IngestDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	count, err := h.library.IngestDocument(c.Request.Context(), req.Filename, req.Text)
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "ingest failed: "+err.Error())
		}
		return
	}

	response.OK(c, gin.H{"filename": req.Filename, "chunk_count": count})
}

// UploadFailure is one file's failure in an upload batch, classified by the
// same domain codes error responses use.
type UploadFailure struct {
	Filename string `json:"filename"`
	Code     int    `json:"code"`
	Message  string `json:"message"`
}

// Upload accepts a multipart form with one or more "files" entries, converts
// each to text, and ingests the results. Per-file failures are reported in
// the response without aborting the batch.
func (h *LibraryHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid multipart form")
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "no files uploaded")
		return
	}

	var failures []UploadFailure
	inputs := make([]app.FileInput, 0, len(files))
	for _, fh := range files {
		// Reject oversized uploads before buffering them.
		if fh.Size > convert.MaxFileBytes {
			failures = append(failures, UploadFailure{
				Filename: fh.Filename,
				Code:     response.CodeFileTooLarge,
				Message:  "file too large (max 10MB)",
			})
			continue
		}
		f, err := fh.Open()
		if err != nil {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read "+fh.Filename)
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read "+fh.Filename)
			return
		}
		inputs = append(inputs, app.FileInput{Name: fh.Filename, Data: data})
	}

	result := h.library.IngestFiles(c.Request.Context(), inputs)
	for _, fe := range result.Failed {
		failures = append(failures, UploadFailure{
			Filename: fe.Filename,
			Code:     classifyFileError(fe.Err),
			Message:  fe.Err.Error(),
		})
	}
	response.OK(c, gin.H{"ingested": result.Ingested, "failed": failures})
}

// classifyFileError maps a conversion or ingestion failure to a domain code.
func classifyFileError(err error) int {
	switch {
	case errors.Is(err, convert.ErrUnsupportedFormat):
		return response.CodeUnsupportedFormat
	case errors.Is(err, convert.ErrFileTooLarge):
		return response.CodeFileTooLarge
	case errors.Is(err, convert.ErrEmptyContent):
		return response.CodeEmptyContent
	case errors.Is(err, app.ErrInvalidInput):
		return response.CodeBadRequest
	default:
		return response.CodeInternalServer
	}
}

func (h *LibraryHandler) ListDocuments(c *gin.Context) {
	response.OK(c, h.library.ListDocuments())
}

func (h *LibraryHandler) RemoveDocument(c *gin.Context) {
	filename := c.Param("filename")
	if filename == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing filename")
		return
	}

	if err := h.library.RemoveDocument(c.Request.Context(), filename); err != nil {
		if errors.Is(err, app.ErrDocumentNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "remove document failed")
		}
		return
	}
	response.OK(c, gin.H{"removed": filename})
}

func (h *LibraryHandler) Reset(c *gin.Context) {
	if err := h.library.ResetLibrary(c.Request.Context()); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "reset failed")
		return
	}
	response.OK(c, gin.H{"reset": true})
}

func (h *LibraryHandler) Stats(c *gin.Context) {
	response.OK(c, h.library.Stats(c.Request.Context()))
}
