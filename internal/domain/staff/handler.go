package staff

import (
	"encoding/json"
	"net/http"
	"time"

	"pet-clinic-ops/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/staff", func(sr chi.Router) {
		sr.Post("/", createMemberHandler(svc))
		sr.Get("/", listMembersHandler(svc))
		sr.Get("/{staffID}", getMemberHandler(svc))
	})
}

type createMemberRequest struct {
	Name           string `json:"name"`
	Position       string `json:"position"`
	Specialization string `json:"specialization"`
	Phone          string `json:"phone"`
}

type memberResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Position       Position  `json:"position"`
	Specialization string    `json:"specialization"`
	Phone          string    `json:"phone"`
	CreatedAt      time.Time `json:"created_at"`
}

func createMemberHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createMemberRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.BadRequest(w, "invalid json")
			return
		}
		m, err := svc.Create(r.Context(), CreateInput(req))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusCreated, toMemberResponse(m))
	}
}

func listMembersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		out := make([]memberResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMemberResponse(m))
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

func getMemberHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := svc.GetByID(r.Context(), chi.URLParam(r, "staffID"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, toMemberResponse(m))
	}
}

func toMemberResponse(m Member) memberResponse {
	return memberResponse{
		ID:             m.ID,
		Name:           m.Name,
		Position:       m.Position,
		Specialization: m.Specialization,
		Phone:          m.Phone,
		CreatedAt:      m.CreatedAt,
	}
}
