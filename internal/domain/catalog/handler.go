package catalog

import (
	"encoding/json"
	"net/http"
	"time"

	"pet-clinic-ops/internal/middleware"
	"pet-clinic-ops/internal/platform/respond"
	"pet-clinic-ops/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// RegisterRoutes: lectura para cualquier usuario autenticado, escritura para admin/recepción.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/services", func(sr chi.Router) {
		sr.Get("/", listServicesHandler(svc))
		sr.Get("/{serviceID}", getServiceHandler(svc))

		sr.Group(func(wr chi.Router) {
			wr.Use(middleware.RequireRole(auth.RoleAdmin, auth.RoleReceptionist))
			wr.Post("/", createServiceHandler(svc))
			wr.Patch("/{serviceID}", updateServiceHandler(svc))
		})
	})
}

type createServiceRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	BasePrice   decimal.Decimal `json:"base_price"`
}

type updateServiceRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	BasePrice   *decimal.Decimal `json:"base_price"`
}

type serviceResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	BasePrice   decimal.Decimal `json:"base_price"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// createServiceHandler godoc
// @Summary Crear servicio del catálogo
// @Tags services
// @Accept json
// @Produce json
// @Param body body createServiceRequest true "Servicio"
// @Success 201 {object} serviceResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 409 {object} respond.ErrorBody
// @Router /services [post]
func createServiceHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createServiceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.BadRequest(w, "invalid json")
			return
		}
		cs, err := svc.Create(r.Context(), CreateInput(req))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusCreated, toServiceResponse(cs))
	}
}

func listServicesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		out := make([]serviceResponse, 0, len(items))
		for _, cs := range items {
			out = append(out, toServiceResponse(cs))
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

func getServiceHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cs, err := svc.GetByID(r.Context(), chi.URLParam(r, "serviceID"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, toServiceResponse(cs))
	}
}

func updateServiceHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateServiceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.BadRequest(w, "invalid json")
			return
		}
		cs, err := svc.Update(r.Context(), chi.URLParam(r, "serviceID"), UpdateInput(req))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, toServiceResponse(cs))
	}
}

func toServiceResponse(cs ClinicService) serviceResponse {
	return serviceResponse{
		ID:          cs.ID,
		Name:        cs.Name,
		Description: cs.Description,
		BasePrice:   cs.BasePrice,
		UpdatedAt:   cs.UpdatedAt,
	}
}
