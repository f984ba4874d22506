package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/betinha/rental-core/internal/calendar"
	"github.com/betinha/rental-core/internal/service"
)

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	from, to, err := h.dateRange(r)
	if err != nil {
		writeError(w, err)
		return
	}
	page, pageSize, err := pageParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	q := r.URL.Query()
	events, err := h.svc.Events.ListEvents(r.Context(), service.EventQuery{
		Status:     q.Get("status"),
		CustomerID: q.Get("customerId"),
		From:       from,
		To:         to,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writePage(w, events, toEvent)
}

func (h *Handler) getEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := h.svc.Events.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEvent(ev))
}

func (h *Handler) createEvent(w http.ResponseWriter, r *http.Request) {
	var in eventRequest
	if err := decode(r, &in); err != nil {
		writeError(w, err)
		return
	}
	ev, err := h.svc.Events.CreateEvent(r.Context(), in.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEvent(ev))
}

func (h *Handler) updateEvent(w http.ResponseWriter, r *http.Request) {
	var in eventRequest
	if err := decode(r, &in); err != nil {
		writeError(w, err)
		return
	}
	ev, err := h.svc.Events.UpdateEvent(r.Context(), chi.URLParam(r, "id"), in.patch())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEvent(ev))
}

func (h *Handler) deleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Events.DeleteEvent(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK)
}

func (h *Handler) attachItem(w http.ResponseWriter, r *http.Request) {
	var in attachItemRequest
	if err := decode(r, &in); err != nil {
		writeError(w, err)
		return
	}
	item, err := h.svc.Events.AttachItem(r.Context(), chi.URLParam(r, "id"), in.CatalogItemID, in.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventItem(item))
}

func (h *Handler) detachItem(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Events.DetachItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemId")); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK)
}

func (h *Handler) attachTeamMember(w http.ResponseWriter, r *http.Request) {
	var in attachTeamRequest
	if err := decode(r, &in); err != nil {
		writeError(w, err)
		return
	}
	m, err := h.svc.Events.AttachTeamMember(r.Context(), chi.URLParam(r, "id"), in.EmployeeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTeamMember(m))
}

func (h *Handler) detachTeamMember(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Events.DetachTeamMember(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "teamId")); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK)
}

func (h *Handler) recalculate(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Events.Recalculate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBreakdown(b))
}

func (h *Handler) auditTrail(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit")
	if err != nil {
		writeError(w, err)
		return
	}
	page, pageSize, err := pageParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	// limit bounds the newest entries loaded; paging happens over those.
	entries, err := h.svc.Events.AuditTrail(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writePage(w, calendar.Paginate(entries, page, pageSize), toAuditEntry)
}

func (h *Handler) customerEvents(w http.ResponseWriter, r *http.Request) {
	page, pageSize, err := pageParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	events, err := h.svc.Customers.Events(r.Context(), chi.URLParam(r, "id"), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writePage(w, events, toEvent)
}

// dateRange reads from/to (RFC 3339 or YYYY-MM-DD) or a whole month
// (YYYY-MM). A bare "to" date includes that day.
func (h *Handler) dateRange(r *http.Request) (from, to time.Time, err error) {
	q := r.URL.Query()
	if month := strings.TrimSpace(q.Get("month")); month != "" {
		t, perr := time.ParseInLocation("2006-01", month, h.loc)
		if perr != nil {
			return from, to, &service.Error{Kind: service.KindValidation, Field: "month", Message: "month must be YYYY-MM"}
		}
		m := calendar.MonthOf(t, h.loc)
		return m.Start, m.End, nil
	}
	if from, err = calendar.ParseBound(q.Get("from"), false, h.loc); err != nil {
		return from, to, &service.Error{Kind: service.KindValidation, Field: "from", Message: "from must be a date"}
	}
	if to, err = calendar.ParseBound(q.Get("to"), true, h.loc); err != nil {
		return from, to, &service.Error{Kind: service.KindValidation, Field: "to", Message: "to must be a date"}
	}
	return from, to, nil
}

func (h *Handler) statsFilter(r *http.Request) (service.StatsFilter, error) {
	from, to, err := h.dateRange(r)
	if err != nil {
		return service.StatsFilter{}, err
	}
	return service.StatsFilter{Status: r.URL.Query().Get("status"), From: from, To: to}, nil
}
