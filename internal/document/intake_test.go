package document

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/estdev3690/digital-e-gram-panchayat/internal/document/blobstore"
	dErrors "github.com/estdev3690/digital-e-gram-panchayat/pkg/domain-errors"
)

type IntakeSuite struct {
	suite.Suite
	ctx    context.Context
	store  *blobstore.InMemory
	intake *Intake
}

func TestIntakeSuite(t *testing.T) {
	suite.Run(t, new(IntakeSuite))
}

func (s *IntakeSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = blobstore.NewInMemory()
	s.intake = NewIntake(s.store, 30*time.Second)
}

func pdf(name, body string) File {
	return File{
		Name:     name,
		MimeType: "application/pdf",
		Size:     int64(len(body)),
		Content:  strings.NewReader(body),
	}
}

// =============================================================================
// Validation Tests
// =============================================================================

func (s *IntakeSuite) TestProcessValidation() {
	s.Run("empty set is rejected before any storage", func() {
		_, err := s.intake.Process(s.ctx, nil)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Zero(s.store.Len())
	})

	s.Run("disallowed extension is rejected", func() {
		f := File{Name: "resume.docx", MimeType: "application/pdf", Size: 10, Content: strings.NewReader("0123456789")}
		_, err := s.intake.Process(s.ctx, []File{f})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Zero(s.store.Len())
	})

	s.Run("mismatched mime type is rejected", func() {
		f := File{Name: "photo.png", MimeType: "application/zip", Size: 10, Content: strings.NewReader("0123456789")}
		_, err := s.intake.Process(s.ctx, []File{f})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("oversized file is rejected", func() {
		f := File{Name: "scan.pdf", MimeType: "application/pdf", Size: MaxFileSize + 1, Content: strings.NewReader("x")}
		_, err := s.intake.Process(s.ctx, []File{f})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("one invalid file fails the whole batch before storage", func() {
		files := []File{
			pdf("good.pdf", "content"),
			{Name: "bad.exe", MimeType: "application/octet-stream", Size: 4, Content: strings.NewReader("bad!")},
		}
		_, err := s.intake.Process(s.ctx, files)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Zero(s.store.Len())
	})

	s.Run("all four permitted types are accepted", func() {
		files := []File{
			{Name: "a.jpeg", MimeType: "image/jpeg", Size: 1, Content: strings.NewReader("a")},
			{Name: "b.jpg", MimeType: "image/jpg", Size: 1, Content: strings.NewReader("b")},
			{Name: "c.png", MimeType: "image/png", Size: 1, Content: strings.NewReader("c")},
			{Name: "d.pdf", MimeType: "application/pdf", Size: 1, Content: strings.NewReader("d")},
		}
		docs, err := s.intake.Process(s.ctx, files)
		s.Require().NoError(err)
		s.Len(docs, 4)
		s.Equal(4, s.store.Len())
	})
}

// =============================================================================
// Storage Tests
// =============================================================================

func (s *IntakeSuite) TestProcessStorage() {
	s.Run("documents carry original names and distinct locators", func() {
		docs, err := s.intake.Process(s.ctx, []File{
			pdf("aadhar card.pdf", "aaa"),
			pdf("income certificate.pdf", "bbb"),
		})
		s.Require().NoError(err)
		s.Require().Len(docs, 2)

		s.Equal("aadhar card.pdf", docs[0].Name)
		s.Equal("income certificate.pdf", docs[1].Name)
		s.NotEqual(docs[0].Locator, docs[1].Locator)
		// Storage keys never contain the raw space.
		s.NotContains(docs[0].Locator, " ")
	})

	s.Run("a deadline-bound failure maps to a timeout error", func() {
		store := blobstore.NewInMemory()
		store.PutErr = func(string) error { return context.DeadlineExceeded }
		intake := NewIntake(store, 30*time.Second)

		_, err := intake.Process(s.ctx, []File{pdf("slow.pdf", "aaa")})
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
		s.Zero(store.Len())
	})

	s.Run("a storage failure deletes the blobs that made it", func() {
		store := blobstore.NewInMemory()
		store.PutErr = func(key string) error {
			if strings.HasSuffix(key, "fails.pdf") {
				return errors.New("disk full")
			}
			return nil
		}
		intake := NewIntake(store, 30*time.Second)

		_, err := intake.Process(s.ctx, []File{
			pdf("survives.pdf", "aaa"),
			pdf("fails.pdf", "bbb"),
		})
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.Zero(store.Len(), "no orphaned blobs after a failed batch")
	})
}

func (s *IntakeSuite) TestDiscard() {
	docs, err := s.intake.Process(s.ctx, []File{pdf("doc.pdf", "aaa")})
	s.Require().NoError(err)
	s.Equal(1, s.store.Len())

	s.intake.Discard(s.ctx, docs)
	s.Zero(s.store.Len())
}

func TestStorageNameSanitization(t *testing.T) {
	now := time.Date(2025, 11, 12, 10, 0, 0, 0, time.UTC)
	name := storageName("राशन card (1).pdf", now)

	if strings.ContainsAny(name, " ()") {
		t.Errorf("storage name %q contains unsanitized characters", name)
	}
	if !strings.HasSuffix(name, "card__1_.pdf") {
		t.Errorf("storage name %q does not end with sanitized original", name)
	}
}
