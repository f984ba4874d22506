package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/betinha/rental-core/internal/calendar"
	"github.com/betinha/rental-core/internal/service"
)

type errorResponse struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("http: encode response: %v", err)
	}
}

// writePage writes the items as a plain JSON array, the shape list
// endpoints always had, with paging metadata in headers.
func writePage[T, D any](w http.ResponseWriter, p calendar.Page[T], conv func(*T) D) {
	out := make([]D, 0, len(p.Items))
	for i := range p.Items {
		out = append(out, conv(&p.Items[i]))
	}
	h := w.Header()
	h.Set("X-Total-Count", strconv.Itoa(p.Total))
	h.Set("X-Page", strconv.Itoa(p.Page))
	h.Set("X-Page-Size", strconv.Itoa(p.PageSize))
	writeJSON(w, http.StatusOK, out)
}

func writeSuccess(w http.ResponseWriter, status int) {
	writeJSON(w, status, map[string]bool{"success": true})
}

// writeError maps service error kinds onto HTTP statuses. Internal
// details are logged, never sent.
func writeError(w http.ResponseWriter, err error) {
	var se *service.Error
	if !errors.As(err, &se) {
		se = &service.Error{Kind: service.KindInternal, Err: err}
	}
	switch se.Kind {
	case service.KindValidation:
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: se.Message, Field: se.Field})
	case service.KindNotFound:
		writeJSON(w, http.StatusNotFound, errorResponse{Message: se.Message})
	case service.KindUnauthorized:
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: se.Message})
	default:
		log.Printf("http: internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Internal Error"})
	}
}

const maxBodyBytes = 1 << 20

// decode reads a JSON body into dst; malformed input is a validation
// error.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &service.Error{Kind: service.KindValidation, Message: "request body is empty"}
		}
		return &service.Error{Kind: service.KindValidation, Message: "malformed JSON body", Err: err}
	}
	return nil
}
