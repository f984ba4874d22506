package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/betinha/rental-core/internal/model"
	"github.com/betinha/rental-core/internal/service"
)

// Services are the use cases served over HTTP.
type Services struct {
	Auth      *service.AuthService
	Events    *service.EventService
	Catalog   *service.CatalogService
	Staff     *service.StaffService
	Fleet     *service.FleetService
	Customers *service.CustomerService
	Stats     *service.StatsService
}

type Handler struct {
	svc Services
	loc *time.Location
}

// NewRouter builds the REST API. Bare dates in query strings and the
// dates printed on documents use loc.
func NewRouter(svc Services, loc *time.Location, allowedOrigins []string) http.Handler {
	if loc == nil {
		loc = time.UTC
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"https://*", "http://*"}
	}
	h := &Handler{svc: svc, loc: loc}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Total-Count", "X-Page", "X-Page-Size", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.login)
		r.Post("/auth/logout", h.logout)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth(svc.Auth))

			r.Get("/auth/me", h.me)
			r.Put("/auth/password", h.changePassword)

			r.Route("/employees", func(r chi.Router) {
				mountCRUD(r, crud[model.Employee, employeeRequest, employeeDTO]{
					list:   svc.Staff.List,
					get:    svc.Staff.Get,
					delete: svc.Staff.Delete,
					create: func(r *http.Request, in employeeRequest) (*model.Employee, error) {
						return svc.Staff.Create(r.Context(), in.fields())
					},
					update: func(r *http.Request, id string, in employeeRequest) (*model.Employee, error) {
						return svc.Staff.Update(r.Context(), id, in.fields())
					},
					dto: toEmployee,
				})
			})

			r.Route("/vehicles", func(r chi.Router) {
				mountCRUD(r, crud[model.Vehicle, vehicleRequest, vehicleDTO]{
					list:   svc.Fleet.List,
					get:    svc.Fleet.Get,
					delete: svc.Fleet.Delete,
					create: func(r *http.Request, in vehicleRequest) (*model.Vehicle, error) {
						return svc.Fleet.Create(r.Context(), in.fields())
					},
					update: func(r *http.Request, id string, in vehicleRequest) (*model.Vehicle, error) {
						return svc.Fleet.Update(r.Context(), id, in.fields())
					},
					dto: toVehicle,
				})
			})

			r.Route("/categories", func(r chi.Router) {
				mountCRUD(r, crud[model.Category, categoryRequest, categoryDTO]{
					list:   svc.Catalog.ListCategories,
					get:    svc.Catalog.GetCategory,
					delete: svc.Catalog.DeleteCategory,
					create: func(r *http.Request, in categoryRequest) (*model.Category, error) {
						return svc.Catalog.CreateCategory(r.Context(), service.CategoryFields{Name: in.Name})
					},
					update: func(r *http.Request, id string, in categoryRequest) (*model.Category, error) {
						return svc.Catalog.UpdateCategory(r.Context(), id, service.CategoryFields{Name: in.Name})
					},
					dto: toCategory,
				})
			})

			r.Route("/catalog", func(r chi.Router) {
				mountCRUD(r, crud[model.CatalogItem, catalogItemRequest, catalogItemDTO]{
					list:   svc.Catalog.ListItems,
					get:    svc.Catalog.GetItem,
					delete: svc.Catalog.DeleteItem,
					create: func(r *http.Request, in catalogItemRequest) (*model.CatalogItem, error) {
						return svc.Catalog.CreateItem(r.Context(), in.fields())
					},
					update: func(r *http.Request, id string, in catalogItemRequest) (*model.CatalogItem, error) {
						return svc.Catalog.UpdateItem(r.Context(), id, in.fields())
					},
					dto: toCatalogItem,
				})
			})

			r.Route("/customers", func(r chi.Router) {
				mountCRUD(r, crud[model.Customer, customerRequest, customerDTO]{
					list:   svc.Customers.List,
					get:    svc.Customers.Get,
					delete: svc.Customers.Delete,
					create: func(r *http.Request, in customerRequest) (*model.Customer, error) {
						return svc.Customers.Create(r.Context(), in.fields())
					},
					update: func(r *http.Request, id string, in customerRequest) (*model.Customer, error) {
						return svc.Customers.Update(r.Context(), id, in.fields())
					},
					dto: toCustomer,
				})
				r.Get("/{id}/events", h.customerEvents)
			})

			r.Route("/events", func(r chi.Router) {
				r.Get("/", h.listEvents)
				r.Post("/", h.createEvent)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.getEvent)
					r.Put("/", h.updateEvent)
					r.Patch("/", h.updateEvent)
					r.Delete("/", h.deleteEvent)

					r.Post("/items", h.attachItem)
					r.Delete("/items/{itemId}", h.detachItem)
					r.Post("/team", h.attachTeamMember)
					r.Delete("/team/{teamId}", h.detachTeamMember)

					r.Post("/recalculate", h.recalculate)
					r.Get("/audit", h.auditTrail)
					r.Get("/quote.pdf", h.quotePDF)
				})
			})

			r.Get("/stats", h.stats)
			r.Get("/reports/events.xlsx", h.eventsReport)
		})
	})

	return r
}
