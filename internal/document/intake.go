// Package document validates and stores uploaded files at submission time.
//
// Intake is all-or-nothing: every file is validated before any byte is
// stored, uploads run concurrently under a dedicated deadline, and a failure
// after partial storage deletes what was already written so no orphaned
// blobs survive a rejected submission.
package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/estdev3690/digital-e-gram-panchayat/internal/application/models"
	"github.com/estdev3690/digital-e-gram-panchayat/internal/document/blobstore"
	dErrors "github.com/estdev3690/digital-e-gram-panchayat/pkg/domain-errors"
)

// MaxFileSize is the per-file upload limit.
const MaxFileSize = 5 << 20 // 5 MiB

// allowedTypes are the accepted file type tokens, matched against both the
// filename extension and the declared MIME type.
var allowedTypes = []string{"jpeg", "jpg", "png", "pdf"}

// sanitizePattern matches every byte that is not kept verbatim in storage
// names.
var sanitizePattern = regexp.MustCompile(`[^a-zA-Z0-9.]`)

// File is one uploaded file as received from the transport layer.
type File struct {
	Name     string
	MimeType string
	Size     int64
	Content  io.Reader
}

// Intake validates uploads and writes accepted files to the blob store.
type Intake struct {
	store blobstore.BlobStore

	// timeout bounds the storage phase independently of the surrounding
	// request deadline; large uploads are the system's only slow path.
	timeout time.Duration
}

func NewIntake(store blobstore.BlobStore, timeout time.Duration) *Intake {
	return &Intake{store: store, timeout: timeout}
}

// Process validates all files, then stores them, returning one document
// record per file in input order.
//
// Errors: CodeValidation when the set is empty or any file has a disallowed
// type or exceeds MaxFileSize (nothing is stored); CodeTimeout when the
// storage deadline expires; CodeInternal for storage failures. On any
// storage-phase error, already-stored blobs are deleted before returning.
func (i *Intake) Process(ctx context.Context, files []File) ([]models.Document, error) {
	if len(files) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "Required documents are missing")
	}
	for _, f := range files {
		if err := validate(f); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	now := time.Now().UTC()
	docs := make([]models.Document, len(files))
	locators := make([]string, len(files))

	g, gctx := errgroup.WithContext(ctx)
	for idx, f := range files {
		g.Go(func() error {
			key := storageName(f.Name, now)
			locator, err := i.store.Put(gctx, key, f.Content, f.Size, f.MimeType)
			if err != nil {
				return fmt.Errorf("store %s: %w", f.Name, err)
			}
			locators[idx] = locator
			docs[idx] = models.Document{
				Name:       f.Name,
				Locator:    locator,
				UploadedAt: now,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		i.cleanup(locators)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "document upload timed out")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store documents")
	}
	return docs, nil
}

// Discard deletes the blobs behind already-stored documents. Callers use it
// when a submission fails after intake succeeded.
func (i *Intake) Discard(ctx context.Context, docs []models.Document) {
	for _, d := range docs {
		if d.Locator == "" {
			continue
		}
		_ = i.store.Delete(ctx, d.Locator)
	}
}

// cleanup deletes stored blobs after a failed intake. It runs on a fresh
// context because the upload context may already be cancelled.
func (i *Intake) cleanup(locators []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, locator := range locators {
		if locator == "" {
			continue
		}
		_ = i.store.Delete(ctx, locator)
	}
}

func validate(f File) error {
	if f.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "file name is required")
	}
	if !typeAllowed(f) {
		return dErrors.New(dErrors.CodeValidation, "Only .jpeg, .jpg, .png and .pdf files are allowed")
	}
	if f.Size <= 0 {
		return dErrors.Newf(dErrors.CodeValidation, "file %s is empty", f.Name)
	}
	if f.Size > MaxFileSize {
		return dErrors.Newf(dErrors.CodeValidation, "file %s exceeds the 5 MB limit", f.Name)
	}
	return nil
}

func typeAllowed(f File) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(f.Name)), ".")
	mime := strings.ToLower(f.MimeType)
	extOK, mimeOK := false, false
	for _, t := range allowedTypes {
		if ext == t {
			extOK = true
		}
		if strings.Contains(mime, t) {
			mimeOK = true
		}
	}
	return extOK && mimeOK
}

// storageName builds a collision-resistant object key: upload timestamp, a
// random suffix, and the sanitized original name.
func storageName(original string, now time.Time) string {
	sanitized := sanitizePattern.ReplaceAllString(original, "_")
	return fmt.Sprintf("%d-%09d-%s", now.UnixMilli(), rand.Int64N(1_000_000_000), sanitized)
}
