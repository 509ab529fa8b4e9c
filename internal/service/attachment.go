package service

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/impservers/impchat/internal/domain"
	"github.com/impservers/impchat/internal/errors"
	"github.com/impservers/impchat/internal/storage/fs"
)

// BlobStorage is the disk surface the attachment service and the sweep use.
type BlobStorage interface {
	Save(data io.Reader, key string, maxSize int64) (int64, error)
	Open(key string) (io.ReadCloser, error)
	Delete(key string) error
	List() ([]fs.BlobInfo, error)
}

type AttachmentService interface {
	Store(data io.Reader, originalName string) (*domain.AttachmentRef, int64, error)
	Open(key string) (io.ReadCloser, error)
}

type Attachment struct {
	blobs   BlobStorage
	maxSize int64
}

func NewAttachment(blobs BlobStorage, maxSize int64) *Attachment {
	return &Attachment{blobs: blobs, maxSize: maxSize}
}

// storageKey generates the opaque disk name for an upload. The uuid makes it
// unguessable and collision-free; only a sanitized extension of the original
// name is kept, for content-type sniffing on download.
func storageKey(originalName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if len(ext) > 8 || strings.ContainsAny(ext, `/\`) || strings.Contains(ext, "..") {
		ext = ""
	}
	return uuid.NewString() + ext
}

// Store writes the blob and returns the reference a client embeds in its
// next message. The blob is live on disk before any message points at it.
func (a *Attachment) Store(data io.Reader, originalName string) (*domain.AttachmentRef, int64, error) {
	key := storageKey(originalName)
	written, err := a.blobs.Save(data, key, a.maxSize)
	if err != nil {
		// Typed errors keep their status code on the way to the handler;
		// only plain I/O faults get wrapped.
		if _, ok := err.(*errors.ErrorWithStatusCode); ok {
			return nil, 0, err
		}
		return nil, 0, fmt.Errorf("failed to store attachment %q: %w", originalName, err)
	}
	return &domain.AttachmentRef{StorageKey: key, OriginalName: filepath.Base(originalName)}, written, nil
}

// Open returns the blob by storage key. Swept blobs read as not found,
// which clients show as an expired attachment.
func (a *Attachment) Open(key string) (io.ReadCloser, error) {
	return a.blobs.Open(key)
}
