package validation

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/impservers/impchat/internal/errors"

	_ "golang.org/x/image/webp" // register webp for dimension extraction
)

// formOverhead is slack for multipart boundaries and form fields on top of
// the attachment size limit.
const formOverhead = 1 << 20

// ParseUpload enforces the size ceiling and extracts the single uploaded
// file from the multipart form. MaxBytesReader stops reading at the limit,
// so an oversized body cannot exhaust the server no matter what
// Content-Length claims.
func ParseUpload(w http.ResponseWriter, r *http.Request, field string, maxSize int64) (*multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+formOverhead)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		return nil, errors.NewPayloadTooLarge(
			fmt.Sprintf("Upload exceeds the %.0fMB limit or is not valid multipart data", float64(maxSize)/(1<<20)))
	}

	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil, errors.NewValidation(fmt.Sprintf("Missing file field %q", field))
	}
	if len(files) > 1 {
		return nil, errors.NewValidation("Only one file per upload")
	}

	fileHeader := files[0]
	if fileHeader.Size > maxSize {
		return nil, errors.NewPayloadTooLarge(
			fmt.Sprintf("Attachment exceeds the %.0fMB limit", float64(maxSize)/(1<<20)))
	}
	return fileHeader, nil
}

// DetectMimeType resolves the upload's MIME type, falling back to the file
// extension when the client sent nothing useful.
func DetectMimeType(fileHeader *multipart.FileHeader) (string, error) {
	mimeType := fileHeader.Header.Get("Content-Type")

	if mimeType == "" || mimeType == "application/octet-stream" {
		ext := filepath.Ext(fileHeader.Filename)
		if detected := mime.TypeByExtension(ext); detected != "" {
			mimeType = detected
		}
	}

	if mimeType == "" {
		return "", errors.NewValidation(fmt.Sprintf("Could not detect MIME type for file: %s", fileHeader.Filename))
	}
	return mimeType, nil
}

// CheckMimeAllowed rejects uploads outside the allow-list. An empty list
// allows everything.
func CheckMimeAllowed(mimeType string, allowed []string) error {
	if len(allowed) == 0 {
		return nil
	}
	for _, m := range allowed {
		if m == mimeType {
			return nil
		}
	}
	return errors.NewValidation(fmt.Sprintf("MIME type %s is not allowed", mimeType))
}

// ExtractImageDimensions reads width and height from an image upload without
// decoding the pixels. Non-images and undecodable files return nils, which
// is not an error.
func ExtractImageDimensions(file multipart.File, mimeType string) (*int, *int) {
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, nil
	}

	cfg, _, err := image.DecodeConfig(file)
	file.Seek(0, 0)
	if err != nil {
		return nil, nil
	}

	width, height := cfg.Width, cfg.Height
	return &width, &height
}
