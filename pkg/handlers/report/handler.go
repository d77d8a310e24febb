package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/de-tools/report-atlas/pkg/models/api"
	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/render/chart"
	"github.com/de-tools/report-atlas/pkg/services/document"
	"github.com/de-tools/report-atlas/pkg/services/report"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const internalErrorMessage = "internal error while generating the report"

type Documents interface {
	Generate(ctx context.Context, f domain.ReportFilter, variant, style string) ([]byte, error)
	ClearCache(ctx context.Context) (int, error)
}

type Reports interface {
	Entities(ctx context.Context, f domain.ReportFilter) ([]string, error)
	Totals(ctx context.Context, f domain.ReportFilter) ([]domain.SeriesPoint, error)
	Invalidate(ctx context.Context, queryType string) (int64, error)
	ClearExpired(ctx context.Context) (int64, error)
}

type Handler struct {
	documents Documents
	reports   Reports
	now       func() time.Time
}

func NewHandler(documents Documents, reports Reports) *Handler {
	return &Handler{
		documents: documents,
		reports:   reports,
		now:       time.Now,
	}
}

// Routes mounts the report endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/reports/{variant}/pdf", h.GetDocument)
	r.Get("/entities", h.ListEntities)
	r.Get("/totals", h.GetTotals)
	r.Delete("/documents/cache", h.ClearDocuments)
	r.Delete("/cache/{type}", h.InvalidateType)
	r.Post("/cache/expired/clear", h.ClearExpired)
}

func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	name := chi.URLParam(r, "variant")

	f, err := ParseFilter(r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	data, err := h.documents.Generate(ctx, f, name, r.URL.Query().Get("style"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	// Generate has already validated the variant name.
	variant, _ := document.ParseVariant(name)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", document.FileName(variant, h.now())))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.Error().
			Err(err).
			Str("variant", name).
			Msg("failed to write document")
	}
}

func (h *Handler) ListEntities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	f, err := ParseFilter(r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	entities, err := h.reports.Entities(ctx, f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if entities == nil {
		entities = []string{}
	}
	writeJSON(w, r, http.StatusOK, api.Entities{Entities: entities})
}

func (h *Handler) GetTotals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	f, err := ParseFilter(r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	points, err := h.reports.Totals(ctx, f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response := api.Totals{Totals: make([]api.PeriodTotal, 0, len(points))}
	for _, p := range points {
		label, err := chart.FormatPeriod(p.Period)
		if err != nil {
			label = p.Period
		}
		response.Totals = append(response.Totals, api.PeriodTotal{
			Period: p.Period,
			Label:  label,
			Count:  p.Count,
			Amount: p.Amount,
		})
	}
	writeJSON(w, r, http.StatusOK, response)
}

func (h *Handler) ClearDocuments(w http.ResponseWriter, r *http.Request) {
	n, err := h.documents.ClearCache(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, api.Deleted{Deleted: int64(n)})
}

func (h *Handler) InvalidateType(w http.ResponseWriter, r *http.Request) {
	queryType := chi.URLParam(r, "type")
	if !slices.Contains(report.Types, queryType) {
		writeJSON(w, r, http.StatusBadRequest, api.Error{Error: fmt.Sprintf("unknown cache type %q", queryType)})
		return
	}

	n, err := h.reports.Invalidate(r.Context(), queryType)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, api.Deleted{Deleted: n})
}

func (h *Handler) ClearExpired(w http.ResponseWriter, r *http.Request) {
	n, err := h.reports.ClearExpired(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, api.Deleted{Deleted: n})
}

// writeError maps user correctable errors to 400 and hides everything else behind a generic 500.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNoData),
		errors.Is(err, domain.ErrBadFilter),
		errors.Is(err, document.ErrUnknownVariant):
		writeJSON(w, r, http.StatusBadRequest, api.Error{Error: err.Error()})
	default:
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeJSON(w, r, http.StatusInternalServerError, api.Error{Error: internalErrorMessage})
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("failed to encode response")
	}
}
