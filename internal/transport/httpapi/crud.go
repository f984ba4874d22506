package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/betinha/rental-core/internal/calendar"
	"github.com/betinha/rental-core/internal/service"
)

// crud wires the five reference-data endpoints of one entity.
type crud[T, Req, DTO any] struct {
	list   func(context.Context, service.ListParams) (calendar.Page[T], error)
	get    func(context.Context, string) (*T, error)
	delete func(context.Context, string) error
	create func(*http.Request, Req) (*T, error)
	update func(*http.Request, string, Req) (*T, error)
	dto    func(*T) DTO
}

func mountCRUD[T, Req, DTO any](r chi.Router, c crud[T, Req, DTO]) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		p, err := listParams(r)
		if err != nil {
			writeError(w, err)
			return
		}
		page, err := c.list(r.Context(), p)
		if err != nil {
			writeError(w, err)
			return
		}
		writePage(w, page, c.dto)
	})

	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		var in Req
		if err := decode(r, &in); err != nil {
			writeError(w, err)
			return
		}
		v, err := c.create(r, in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, c.dto(v))
	})

	r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
		v, err := c.get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c.dto(v))
	})

	r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
		var in Req
		if err := decode(r, &in); err != nil {
			writeError(w, err)
			return
		}
		v, err := c.update(r, chi.URLParam(r, "id"), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c.dto(v))
	})

	// Soft delete.
	r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
		if err := c.delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		writeSuccess(w, http.StatusOK)
	})
}

func listParams(r *http.Request) (service.ListParams, error) {
	page, pageSize, err := pageParams(r)
	if err != nil {
		return service.ListParams{}, err
	}
	inactive, err := boolParam(r, "includeInactive")
	if err != nil {
		return service.ListParams{}, err
	}
	return service.ListParams{Page: page, PageSize: pageSize, IncludeInactive: inactive}, nil
}

func pageParams(r *http.Request) (page, pageSize int, err error) {
	if page, err = intParam(r, "page"); err != nil {
		return 0, 0, err
	}
	if pageSize, err = intParam(r, "pageSize"); err != nil {
		return 0, 0, err
	}
	return page, pageSize, nil
}

func intParam(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, &service.Error{Kind: service.KindValidation, Field: name, Message: name + " must be a non-negative integer"}
	}
	return n, nil
}

func boolParam(r *http.Request, name string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &service.Error{Kind: service.KindValidation, Field: name, Message: name + " must be a boolean"}
	}
	return b, nil
}
