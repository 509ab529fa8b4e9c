package handler

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/impservers/impchat/internal/api"
	"github.com/impservers/impchat/internal/logger"
	"github.com/impservers/impchat/internal/utils"
	"github.com/impservers/impchat/internal/validation"
)

// UploadAttachment stores one file and returns the reference the client
// embeds in its next message. The blob is fully on disk before the response
// goes out, so a message never points at a half-written file.
func (h *Handler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	fileHeader, err := validation.ParseUpload(w, r, "file", h.cfg.Public.MaxAttachmentSize)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	mimeType, err := validation.DetectMimeType(fileHeader)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if err := validation.CheckMimeAllowed(mimeType, h.cfg.Public.AllowedMimeTypes); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Log.Error("failed to open uploaded file", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	defer file.Close()

	// Dimension extraction rewinds the file, so the full blob still
	// reaches the store below.
	width, height := validation.ExtractImageDimensions(file, mimeType)

	ref, size, err := h.attachment.Store(file, fileHeader.Filename)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSONStatus(w, http.StatusCreated, api.UploadResponse{
		StorageKey:   ref.StorageKey,
		OriginalName: ref.OriginalName,
		Size:         size,
		Width:        width,
		Height:       height,
	})
}

// DownloadAttachment streams a blob by storage key. Swept attachments come
// back 404; clients render that as an expired attachment.
func (h *Handler) DownloadAttachment(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	rc, err := h.attachment.Open(key)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	defer rc.Close()

	if mimeType := mime.TypeByExtension(filepath.Ext(key)); mimeType != "" {
		w.Header().Set("Content-Type", mimeType)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}

	// Display name is cosmetic and client-supplied; FormatMediaType escapes it.
	if name := r.URL.Query().Get("name"); name != "" {
		w.Header().Set("Content-Disposition",
			mime.FormatMediaType("inline", map[string]string{"filename": name}))
	}

	if _, err := io.Copy(w, rc); err != nil {
		logger.Log.Error("failed to stream attachment", "key", key, "error", err)
	}
}
