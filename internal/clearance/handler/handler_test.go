package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fiscalia/internal/audit"
	"fiscalia/internal/clearance/document"
	"fiscalia/internal/clearance/ornumber"
	"fiscalia/internal/clearance/service"
	"fiscalia/internal/clearance/store"
	"fiscalia/internal/platform/config"
	"fiscalia/internal/platform/logger"
	"fiscalia/internal/platform/middleware"
	id "fiscalia/pkg/domain"
	"fiscalia/pkg/platform/httputil"
)

var testClerk = middleware.Actor{
	UserID: id.UserID(uuid.New()),
	Name:   "Clerk One",
	Role:   middleware.RoleClerk,
}

func testClock() time.Time {
	return time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC)
}

// newTestRouter wires the handler against an in-memory service, with a stub
// middleware standing in for the verified token.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	log := logger.New()
	svc := service.NewService(
		store.NewInMemory(),
		document.NewAssembler(config.Office{
			Republic:       "Republic of the Philippines",
			Department:     "Department of Justice",
			Name:           "Office of the City Prosecutor",
			Address:        "City Hall Complex",
			Signatory:      "Jose P. Santos",
			SignatoryTitle: "City Prosecutor",
		}),
		ornumber.New("OR").WithClock(testClock),
		audit.NewPublisher(audit.NewInMemoryStore()),
		service.WithLogger(log),
		service.WithClock(testClock),
	)
	h := New(svc, log)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithActor(req.Context(), testClerk)))
		})
	})
	h.RegisterReads(r)
	h.RegisterWrites(r)
	h.RegisterAdmin(r)
	return r
}

func submissionBody() map[string]any {
	return map[string]any{
		"format_type":     "A",
		"first_name":      "Juan",
		"middle_name":     "Santos",
		"last_name":       "Cruz",
		"age":             30,
		"address":         "123 Mabini St, Manila",
		"purpose":         "Local Employment",
		"receipt_number":  "RCPT-0001",
		"date_issued":     "2025-01-15",
		"validity_period": "6 Months",
	}
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createRecord(t *testing.T, router http.Handler) *RecordResponse {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/clearances", submissionBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp RecordResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return &resp
}

func TestHandleCreate(t *testing.T) {
	router := newTestRouter(t)
	resp := createRecord(t, router)

	assert.NotEmpty(t, resp.ID)
	assert.Regexp(t, `^OR-2025-[0-9A-Z]{10}$`, resp.ORNumber)
	assert.Equal(t, 100, resp.PurposeFee)
	assert.Equal(t, "Valid", resp.Status)
	assert.Equal(t, "Clerk One", resp.IssuedByName)
}

func TestHandleCreate_ValidationErrorListsFields(t *testing.T) {
	router := newTestRouter(t)
	body := submissionBody()
	body["age"] = 15
	delete(body, "address")

	rec := doJSON(t, router, http.MethodPost, "/clearances", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "validation_failed", errResp.Error)
	assert.Contains(t, errResp.Fields, "age")
	assert.Contains(t, errResp.Fields, "address")
}

func TestHandleCreate_UnknownFormatRejected(t *testing.T) {
	router := newTestRouter(t)
	body := submissionBody()
	body["format_type"] = "Z"

	rec := doJSON(t, router, http.MethodPost, "/clearances", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "unknown_format", errResp.Error)
}

func TestHandleCreate_MissingFormatRejected(t *testing.T) {
	router := newTestRouter(t)
	body := submissionBody()
	delete(body, "format_type")

	rec := doJSON(t, router, http.MethodPost, "/clearances", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCreate_LowercaseFormatNormalized(t *testing.T) {
	router := newTestRouter(t)
	body := submissionBody()
	body["format_type"] = " a "

	rec := doJSON(t, router, http.MethodPost, "/clearances", body)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestHandleGetAndList(t *testing.T) {
	router := newTestRouter(t)
	created := createRecord(t, router)

	rec := doJSON(t, router, http.MethodGet, "/clearances/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got RecordResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, created.ORNumber, got.ORNumber)

	rec = doJSON(t, router, http.MethodGet, "/clearances", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)
	require.Len(t, list.Clearances, 1)
}

func TestHandleGet_BadID(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/clearances/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGet_Missing(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/clearances/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleUpdate(t *testing.T) {
	router := newTestRouter(t)
	created := createRecord(t, router)

	body := submissionBody()
	body["purpose"] = "Abroad Employment"
	rec := doJSON(t, router, http.MethodPut, "/clearances/"+created.ID, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated RecordResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, created.ORNumber, updated.ORNumber)
	assert.Equal(t, 200, updated.PurposeFee)
	assert.Equal(t, "Clerk One", updated.UpdatedByName)
}

func TestHandleDelete(t *testing.T) {
	router := newTestRouter(t)
	created := createRecord(t, router)

	rec := doJSON(t, router, http.MethodDelete, "/clearances/"+created.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/clearances/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlePreview(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/clearances/preview", submissionBody())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp PreviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "A", resp.FormatType)
	assert.Contains(t, resp.HTML, "certificate-preview")
	assert.Contains(t, resp.HTML, "JUAN S. CRUZ")
}

func TestHandlePreview_UnknownFormatDegrades(t *testing.T) {
	router := newTestRouter(t)
	body := submissionBody()
	body["format_type"] = "Z"

	rec := doJSON(t, router, http.MethodPost, "/clearances/preview", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp PreviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.HTML, "NO PENDING CRIMINAL CASE")
}

func TestHandleDocument_ReturnsHTML(t *testing.T) {
	router := newTestRouter(t)
	created := createRecord(t, router)

	rec := doJSON(t, router, http.MethodGet, "/clearances/"+created.ID+"/document", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<!DOCTYPE html>")
	assert.Contains(t, rec.Body.String(), created.ORNumber)
}

func TestHandleStats(t *testing.T) {
	router := newTestRouter(t)
	createRecord(t, router)

	rec := doJSON(t, router, http.MethodGet, "/clearances/stats/overview", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats struct {
		Total   int            `json:"total"`
		Valid   int            `json:"valid"`
		Expired int            `json:"expired"`
		ByFmt   map[string]int `json:"by_format"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Valid)
	assert.Equal(t, 1, stats.ByFmt["A"])
}

func TestHandleFormats(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/clearances/formats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp FormatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Formats, 6)
	assert.Equal(t, "A", resp.Formats[0].Code)
	assert.Contains(t, resp.Formats[1].RequiredFields, "criminal_cases")
}

func TestHandlePurposes(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/clearances/purposes", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PurposesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Purposes)
	assert.Equal(t, "Local Employment", resp.Purposes[0].Purpose)
	assert.Equal(t, 100, resp.Purposes[0].Fee)
}

func TestHandleIssuers(t *testing.T) {
	router := newTestRouter(t)
	createRecord(t, router)

	rec := doJSON(t, router, http.MethodGet, "/clearances/issuers", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp IssuersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Issuers, 1)
	assert.Equal(t, "Clerk One", resp.Issuers[0].Name)
}
