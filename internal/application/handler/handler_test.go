package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"github.com/estdev3690/digital-e-gram-panchayat/internal/application/sequence"
	appservice "github.com/estdev3690/digital-e-gram-panchayat/internal/application/service"
	appstore "github.com/estdev3690/digital-e-gram-panchayat/internal/application/store"
	"github.com/estdev3690/digital-e-gram-panchayat/internal/document"
	"github.com/estdev3690/digital-e-gram-panchayat/internal/document/blobstore"
	"github.com/estdev3690/digital-e-gram-panchayat/internal/platform/logger"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/domain"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/requestcontext"
)

type stubTitles struct{}

func (stubTitles) Title(context.Context, domain.ServiceID) (string, error) {
	return "Birth Certificate", nil
}

type stubDirectory struct{}

func (stubDirectory) Contact(context.Context, domain.UserID) (ApplicantContact, error) {
	return ApplicantContact{Name: "Asha Devi", Email: "asha@example.com", Phone: "9000000001"}, nil
}

type stubCatalog struct{}

func (stubCatalog) ResolveActive(context.Context, domain.ServiceID) error { return nil }

type HandlerSuite struct {
	suite.Suite
	router    chi.Router
	applicant domain.Principal
	staff     domain.Principal
	serviceID domain.ServiceID
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	log := logger.New(logger.ParseLevel("error"))
	svc := appservice.NewService(
		appstore.NewInMemory(),
		sequence.NewInMemory(),
		document.NewIntake(blobstore.NewInMemory(), 30*time.Second),
		stubCatalog{},
		log,
		nil,
	)
	h := NewHandler(svc, stubTitles{}, stubDirectory{}, log)

	s.router = chi.NewRouter()
	h.Routes(s.router)

	s.applicant = domain.Principal{ID: domain.NewUserID(), Role: domain.RoleUser}
	s.staff = domain.Principal{ID: domain.NewUserID(), Role: domain.RoleStaff}
	s.serviceID = domain.NewServiceID()
}

func (s *HandlerSuite) do(p domain.Principal, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if !p.IsZero() {
		req = req.WithContext(requestcontext.WithPrincipal(req.Context(), p))
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) multipartBody(serviceID string, filenames ...string) (io.Reader, string) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	s.Require().NoError(w.WriteField("service", serviceID))
	for _, name := range filenames {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="documents"; filename="`+name+`"`)
		hdr.Set("Content-Type", "application/pdf")
		part, err := w.CreatePart(hdr)
		s.Require().NoError(err)
		_, err = part.Write([]byte("file-content"))
		s.Require().NoError(err)
	}
	s.Require().NoError(w.Close())
	return &buf, w.FormDataContentType()
}

func (s *HandlerSuite) submit() applicationResponse {
	body, ct := s.multipartBody(s.serviceID.String(), "aadhar.pdf")
	rec := s.do(s.applicant, http.MethodPost, "/applications", body, ct)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var resp applicationResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// =============================================================================
// Submit Tests
// =============================================================================

func (s *HandlerSuite) TestSubmit() {
	s.Run("valid multipart submission returns the projection", func() {
		resp := s.submit()

		s.NotEmpty(resp.ID)
		s.Regexp(`^GP\d{8}$`, resp.ApplicationNumber)
		s.Equal("pending", resp.Status)
		s.Equal("Birth Certificate", resp.Service.Title)
		s.Equal("Asha Devi", resp.Applicant.Name)
		s.Require().Len(resp.Documents, 1)
		s.Equal("aadhar.pdf", resp.Documents[0].Name)
		s.Require().Len(resp.Remarks, 1)
	})

	s.Run("malformed service id is rejected", func() {
		body, ct := s.multipartBody("not-a-uuid", "doc.pdf")
		rec := s.do(s.applicant, http.MethodPost, "/applications", body, ct)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("missing files produce a validation error", func() {
		body, ct := s.multipartBody(s.serviceID.String())
		rec := s.do(s.applicant, http.MethodPost, "/applications", body, ct)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("non-multipart body is a bad request", func() {
		rec := s.do(s.applicant, http.MethodPost, "/applications",
			strings.NewReader(`{"service":"x"}`), "application/json")
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("staff cannot submit", func() {
		body, ct := s.multipartBody(s.serviceID.String(), "doc.pdf")
		rec := s.do(s.staff, http.MethodPost, "/applications", body, ct)
		s.Equal(http.StatusForbidden, rec.Code)
	})
}

// =============================================================================
// Read Tests
// =============================================================================

func (s *HandlerSuite) TestGet() {
	created := s.submit()

	s.Run("owner fetches their application", func() {
		rec := s.do(s.applicant, http.MethodGet, "/applications/"+created.ID, nil, "")
		s.Require().Equal(http.StatusOK, rec.Code)

		var resp applicationResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal(created.ApplicationNumber, resp.ApplicationNumber)
	})

	s.Run("another citizen is forbidden", func() {
		other := domain.Principal{ID: domain.NewUserID(), Role: domain.RoleUser}
		rec := s.do(other, http.MethodGet, "/applications/"+created.ID, nil, "")
		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("malformed id is rejected", func() {
		rec := s.do(s.staff, http.MethodGet, "/applications/garbage", nil, "")
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("unknown id is not found", func() {
		rec := s.do(s.staff, http.MethodGet, "/applications/"+domain.NewApplicationID().String(), nil, "")
		s.Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *HandlerSuite) TestListMine() {
	s.submit()
	s.submit()

	rec := s.do(s.applicant, http.MethodGet, "/applications/my", nil, "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp []applicationResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Len(resp, 2)
}

func (s *HandlerSuite) TestListAll() {
	created := s.submit()

	s.Run("staff list with search filter", func() {
		rec := s.do(s.staff, http.MethodGet, "/applications?search="+created.ApplicationNumber, nil, "")
		s.Require().Equal(http.StatusOK, rec.Code)

		var resp []applicationResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Require().Len(resp, 1)
		s.Equal(created.ApplicationNumber, resp[0].ApplicationNumber)
	})

	s.Run("invalid status filter is rejected", func() {
		rec := s.do(s.staff, http.MethodGet, "/applications?status=archived", nil, "")
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("citizens are forbidden", func() {
		rec := s.do(s.applicant, http.MethodGet, "/applications", nil, "")
		s.Equal(http.StatusForbidden, rec.Code)
	})
}

// =============================================================================
// Status Update Tests
// =============================================================================

func (s *HandlerSuite) TestUpdateStatus() {
	created := s.submit()

	s.Run("staff approve with a comment", func() {
		body := strings.NewReader(`{"status":"approved","comment":"verified in person"}`)
		rec := s.do(s.staff, http.MethodPatch, "/applications/"+created.ID+"/status", body, "application/json")
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

		var resp applicationResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal("approved", resp.Status)
		s.Require().Len(resp.Remarks, 2)
		s.Equal("verified in person", resp.Remarks[1].Comment)
	})

	s.Run("missing comment is a validation error", func() {
		body := strings.NewReader(`{"status":"rejected"}`)
		rec := s.do(s.staff, http.MethodPatch, "/applications/"+created.ID+"/status", body, "application/json")
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("unknown status is rejected", func() {
		body := strings.NewReader(`{"status":"archived","comment":"x"}`)
		rec := s.do(s.staff, http.MethodPatch, "/applications/"+created.ID+"/status", body, "application/json")
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("citizens cannot update status", func() {
		body := strings.NewReader(`{"status":"approved","comment":"please"}`)
		rec := s.do(s.applicant, http.MethodPatch, "/applications/"+created.ID+"/status", body, "application/json")
		s.Equal(http.StatusForbidden, rec.Code)
	})
}
