// Package fs stores attachment blobs on local disk, addressed by generated
// storage key only. Writes go to a temp file first and are renamed into
// place on completion, so a blob is either fully present or invisible:
// aborted uploads never surface to reads or to the retention sweep.
package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/impservers/impchat/internal/errors"
)

// partSuffix marks in-flight writes. Readers and the sweep skip them.
const partSuffix = ".part"

type Storage struct {
	rootPath string
}

// BlobInfo describes one completed blob for the sweep.
type BlobInfo struct {
	Key     string
	Size    int64
	ModTime time.Time // completed-write time: set by the publish rename
}

func New(rootPath string) (*Storage, error) {
	p := filepath.Clean(rootPath)
	if err := os.MkdirAll(p, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob root %s: %w", p, err)
	}
	return &Storage{rootPath: p}, nil
}

// validKey rejects anything that could escape the root. Keys are generated
// server-side, so a violation here is a programming error upstream.
func validKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}

// Save writes the blob under key. It fails without leaving a visible blob
// when the reader errors mid-copy or exceeds maxSize (0 = unlimited).
func (s *Storage) Save(data io.Reader, key string, maxSize int64) (int64, error) {
	if err := validKey(key); err != nil {
		return 0, err
	}

	partPath := filepath.Join(s.rootPath, key+partSuffix)
	dst, err := os.Create(partPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create blob file: %w", err)
	}

	src := data
	if maxSize > 0 {
		// One extra byte so an exactly-at-limit blob passes and an
		// over-limit one is detectable.
		src = io.LimitReader(data, maxSize+1)
	}

	written, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(partPath)
		return 0, fmt.Errorf("failed to write blob data: %w", err)
	}
	if maxSize > 0 && written > maxSize {
		os.Remove(partPath)
		return 0, errors.NewPayloadTooLarge(fmt.Sprintf("attachment exceeds %d bytes", maxSize))
	}

	// Publish: the rename is atomic and stamps the completed-write time the
	// sweep orders on.
	finalPath := filepath.Join(s.rootPath, key)
	now := time.Now()
	_ = os.Chtimes(partPath, now, now)
	if err := os.Rename(partPath, finalPath); err != nil {
		os.Remove(partPath)
		return 0, fmt.Errorf("failed to publish blob: %w", err)
	}
	return written, nil
}

// Open returns the blob for reading. A missing key reads as not found,
// which callers surface as an expired attachment.
func (s *Storage) Open(key string) (io.ReadCloser, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.rootPath, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFound("attachment not found")
		}
		return nil, fmt.Errorf("failed to open blob: %w", err)
	}
	return f, nil
}

// Delete removes a blob. Deleting an absent key is a no-op so the sweep is
// idempotent.
func (s *Storage) Delete(key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.rootPath, key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// List returns every completed blob. In-flight .part files are excluded, so
// a sweep pass never sees a write that has not published yet.
func (s *Storage) List() ([]BlobInfo, error) {
	entries, err := os.ReadDir(s.rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to scan blob root: %w", err)
	}

	blobs := make([]BlobInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasSuffix(entry.Name(), partSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue // raced with a delete
		}
		blobs = append(blobs, BlobInfo{Key: entry.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	return blobs, nil
}
