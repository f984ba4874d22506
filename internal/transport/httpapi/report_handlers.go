package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/betinha/rental-core/internal/report"
	"github.com/betinha/rental-core/internal/service"
)

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	f, err := h.statsFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}
	d, err := h.svc.Stats.Stats(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStats(d))
}

func (h *Handler) eventsReport(w http.ResponseWriter, r *http.Request) {
	f, err := h.statsFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}
	events, err := h.svc.Stats.Events(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	body, err := report.EventsXLSX(events, h.loc)
	if err != nil {
		writeError(w, &service.Error{Kind: service.KindInternal, Message: "build report", Err: err})
		return
	}
	name := fmt.Sprintf("eventos_%s.xlsx", time.Now().In(h.loc).Format("20060102_150405"))
	writeFile(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", name, body)
}

func (h *Handler) quotePDF(w http.ResponseWriter, r *http.Request) {
	ev, err := h.svc.Events.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	body, err := report.QuotePDF(ev, h.loc)
	if err != nil {
		writeError(w, &service.Error{Kind: service.KindInternal, Message: "build quote", Err: err})
		return
	}
	writeFile(w, "application/pdf", fmt.Sprintf("orcamento_%s.pdf", ev.ID.String()[:8]), body)
}

func writeFile(w http.ResponseWriter, contentType, name string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
