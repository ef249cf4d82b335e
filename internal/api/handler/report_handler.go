package handler

import (
	"lending-engine/internal/api/handler/dto"
	"lending-engine/internal/domain/report"
	"log/slog"
	"net/http"
)

type ReportHandler struct {
	service report.ReportService
	logger  *slog.Logger
}

func NewReportHandler(s report.ReportService, l *slog.Logger) *ReportHandler {
	return &ReportHandler{
		service: s,
		logger:  l.With("component", "ReportHandler"),
	}
}

// Summary
//
// @Summary Portfolio summary
// @Tags Reports
// @Produce json
// @Success 200 {object} dto.SummaryResponse
// @Router /reports/summary [get]
// @Security BearerAuth
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.Summary(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewSummaryResponse(s))
}

// Export downloads the portfolio summary as an XLSX workbook.
//
// @Summary Export portfolio summary
// @Tags Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Router /reports/export [get]
// @Security BearerAuth
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, filename, err := h.service.ExportSummary(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	h.logger.InfoContext(r.Context(), "Exported summary report", "filename", filename, "bytes", len(data))
	respondFile(w, xlsxContentType, filename, data)
}

// CollectorStats
//
// @Summary Statistics of the calling collector
// @Tags Reports
// @Produce json
// @Success 200 {object} dto.CollectorStatsResponse
// @Router /reports/collector [get]
// @Security BearerAuth
func (h *ReportHandler) CollectorStats(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}

	stats, err := h.service.CollectorStats(r.Context(), actor)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewCollectorStatsResponse(stats))
}
