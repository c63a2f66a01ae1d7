// Package handler exposes the clearance lifecycle over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fiscalia/internal/audit"
	"fiscalia/internal/clearance/fees"
	"fiscalia/internal/clearance/format"
	"fiscalia/internal/clearance/models"
	"fiscalia/internal/clearance/service"
	"fiscalia/internal/clearance/validate"
	"fiscalia/internal/platform/middleware"
	id "fiscalia/pkg/domain"
	dErrors "fiscalia/pkg/domain-errors"
	"fiscalia/pkg/platform/httputil"
)

// Service defines the interface for clearance lifecycle operations.
// Returns domain objects, not HTTP response DTOs.
type Service interface {
	Create(ctx context.Context, sub *models.Submission, actor service.Actor) (*models.Record, error)
	Update(ctx context.Context, clearanceID id.ClearanceID, sub *models.Submission, actor service.Actor) (*models.Record, error)
	Delete(ctx context.Context, clearanceID id.ClearanceID, actor service.Actor) error
	Get(ctx context.Context, clearanceID id.ClearanceID) (*models.Record, error)
	List(ctx context.Context) ([]*models.Record, error)
	ListIssuers(ctx context.Context) ([]models.Issuer, error)
	Preview(ctx context.Context, sub *models.Submission) (string, error)
	DocumentHTML(ctx context.Context, clearanceID id.ClearanceID) (string, error)
	Stats(ctx context.Context) (*models.StatsOverview, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterReads mounts the routes open to any authenticated office user.
// These handlers assume RequireActor has already run; role gating for the
// mutating routes is applied by the router.
func (h *Handler) RegisterReads(r chi.Router) {
	r.Get("/clearances", h.HandleList)
	r.Post("/clearances/preview", h.HandlePreview)
	r.Get("/clearances/formats", h.HandleFormats)
	r.Get("/clearances/purposes", h.HandlePurposes)
	r.Get("/clearances/issuers", h.HandleIssuers)
	r.Get("/clearances/stats/overview", h.HandleStats)
	r.Get("/clearances/{id}", h.HandleGet)
	r.Get("/clearances/{id}/document", h.HandleDocument)
}

// RegisterWrites mounts issuance and correction routes for clerks and admins.
func (h *Handler) RegisterWrites(r chi.Router) {
	r.Post("/clearances", h.HandleCreate)
	r.Put("/clearances/{id}", h.HandleUpdate)
}

// RegisterAdmin mounts destructive routes reserved for admins.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Delete("/clearances/{id}", h.HandleDelete)
}

// HandleCreate issues a new clearance with a fresh O.R. number.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SubmissionRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	record, err := h.service.Create(ctx, req.ToSubmission(), h.actor(r))
	if err != nil {
		h.logger.ErrorContext(ctx, "create clearance failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toRecordResponse(record))
}

// HandleUpdate replaces every submission field of an existing record.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	clearanceID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[SubmissionRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	record, err := h.service.Update(ctx, clearanceID, req.ToSubmission(), h.actor(r))
	if err != nil {
		h.logger.ErrorContext(ctx, "update clearance failed", "error", err, "request_id", requestID, "clearance_id", clearanceID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toRecordResponse(record))
}

// HandleDelete removes a record with an audited actor identity.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	clearanceID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, clearanceID, h.actor(r)); err != nil {
		h.logger.ErrorContext(ctx, "delete clearance failed", "error", err, "request_id", requestID, "clearance_id", clearanceID)
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleGet returns one record.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	clearanceID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	record, err := h.service.Get(ctx, clearanceID)
	if err != nil {
		h.logger.ErrorContext(ctx, "get clearance failed", "error", err, "request_id", requestID, "clearance_id", clearanceID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toRecordResponse(record))
}

// HandleList returns every record, newest first.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	records, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list clearances failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	resp := &ListResponse{Clearances: make([]*RecordResponse, 0, len(records)), Total: len(records)}
	for _, record := range records {
		resp.Clearances = append(resp.Clearances, toRecordResponse(record))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandlePreview renders the on-screen certificate fragment for a draft.
func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SubmissionRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	sub := req.ToSubmission()
	html, err := h.service.Preview(ctx, sub)
	if err != nil {
		h.logger.WarnContext(ctx, "preview clearance failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &PreviewResponse{
		FormatType: string(sub.FormatCode),
		HTML:       html,
	})
}

// HandleDocument returns the printable certificate as HTML.
func (h *Handler) HandleDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	clearanceID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	html, err := h.service.DocumentHTML(ctx, clearanceID)
	if err != nil {
		h.logger.ErrorContext(ctx, "render clearance document failed", "error", err, "request_id", requestID, "clearance_id", clearanceID)
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

// HandleStats returns the dashboard counts.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	stats, err := h.service.Stats(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "clearance stats failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, stats)
}

// HandleIssuers returns the distinct users who have issued clearances.
func (h *Handler) HandleIssuers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	issuers, err := h.service.ListIssuers(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list issuers failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	if issuers == nil {
		issuers = []models.Issuer{}
	}

	httputil.WriteJSON(w, http.StatusOK, &IssuersResponse{Issuers: issuers})
}

// HandleFormats lists the certificate format catalog with each format's
// required fields, so clients can drive their forms from the server.
func (h *Handler) HandleFormats(w http.ResponseWriter, _ *http.Request) {
	catalog := format.All()
	resp := &FormatsResponse{Formats: make([]FormatResponse, 0, len(catalog))}
	for _, cfg := range catalog {
		resp.Formats = append(resp.Formats, toFormatResponse(cfg, validate.RequiredFields(cfg)))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandlePurposes lists the purpose fee schedule.
func (h *Handler) HandlePurposes(w http.ResponseWriter, _ *http.Request) {
	purposes := fees.Purposes()
	resp := &PurposesResponse{Purposes: make([]PurposeResponse, 0, len(purposes))}
	for _, purpose := range purposes {
		resp.Purposes = append(resp.Purposes, PurposeResponse{Purpose: purpose, Fee: fees.Amount(purpose)})
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (id.ClearanceID, bool) {
	clearanceID, err := id.ParseClearanceID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid clearance id"))
		return id.ClearanceID{}, false
	}
	return clearanceID, true
}

func (h *Handler) actor(r *http.Request) service.Actor {
	ctx := r.Context()
	a := middleware.GetActor(ctx)
	return service.Actor{
		UserID:    a.UserID,
		Name:      a.Name,
		Device:    audit.SummarizeUserAgent(r.UserAgent()),
		RequestID: middleware.GetRequestID(ctx),
	}
}
