package records

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pet-clinic-ops/internal/middleware"
	"pet-clinic-ops/internal/platform/respond"
	"pet-clinic-ops/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/records", func(rr chi.Router) {
		rr.With(middleware.RequireRole(auth.RoleDoctor, auth.RoleAdmin)).Post("/", createRecordHandler(svc))
		rr.Get("/{recordID}", getRecordHandler(svc))
	})

	r.Get("/pets/{petID}/records", historyHandler(svc))
}

type prescriptionRequest struct {
	ItemID       string `json:"item_id"`
	Quantity     int    `json:"quantity"`
	Instructions string `json:"instructions"`
}

type createRecordRequest struct {
	AppointmentID string                `json:"appointment_id"`
	Diagnosis     string                `json:"diagnosis"`
	Treatment     string                `json:"treatment"`
	Notes         string                `json:"notes"`
	Prescriptions []prescriptionRequest `json:"prescriptions"`
}

type prescriptionResponse struct {
	ID           string `json:"id"`
	ItemID       string `json:"item_id"`
	Quantity     int    `json:"quantity"`
	Instructions string `json:"instructions"`
}

type recordResponse struct {
	ID            string                 `json:"id"`
	AppointmentID string                 `json:"appointment_id"`
	PetID         string                 `json:"pet_id"`
	Diagnosis     string                 `json:"diagnosis"`
	Treatment     string                 `json:"treatment"`
	Notes         string                 `json:"notes"`
	CreatedAt     time.Time              `json:"created_at"`
	Prescriptions []prescriptionResponse `json:"prescriptions"`
}

// createRecordHandler godoc
// @Summary Registrar ficha clínica
// @Description Inserta la ficha, descuenta el stock recetado y completa la cita, todo o nada.
// @Tags records
// @Accept json
// @Produce json
// @Param body body createRecordRequest true "Ficha clínica"
// @Success 201 {object} recordResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 404 {object} respond.ErrorBody
// @Failure 409 {object} respond.ErrorBody "APPOINTMENT_NOT_ELIGIBLE o INSUFFICIENT_STOCK (item y stock restante)"
// @Router /records [post]
func createRecordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRecordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.BadRequest(w, "invalid json")
			return
		}

		in := CommitInput{
			AppointmentID: req.AppointmentID,
			Diagnosis:     req.Diagnosis,
			Treatment:     req.Treatment,
			Notes:         req.Notes,
			Prescriptions: make([]PrescriptionInput, 0, len(req.Prescriptions)),
		}
		for _, p := range req.Prescriptions {
			in.Prescriptions = append(in.Prescriptions, PrescriptionInput(p))
		}

		rec, err := svc.CommitRecord(r.Context(), in)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusCreated, toRecordResponse(rec))
	}
}

func getRecordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := svc.GetByID(r.Context(), chi.URLParam(r, "recordID"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, toRecordResponse(rec))
	}
}

// historyHandler godoc
// @Summary Historial clínico de una mascota
// @Tags records
// @Produce json
// @Param petID path string true "Pet ID"
// @Param from query string false "RFC3339"
// @Param to query string false "RFC3339"
// @Param q query string false "Texto en diagnóstico, tratamiento o notas"
// @Param limit query int false "1..200 (default 50)"
// @Success 200 {array} recordResponse
// @Router /pets/{petID}/records [get]
func historyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := parseHistoryFilter(r)
		if err != nil {
			respond.BadRequest(w, err.Error())
			return
		}
		items, err := svc.History(r.Context(), chi.URLParam(r, "petID"), f)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		out := make([]recordResponse, 0, len(items))
		for _, rec := range items {
			out = append(out, toRecordResponse(rec))
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

func parseHistoryFilter(r *http.Request) (HistoryFilter, error) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	filter := HistoryFilter{Limit: limit}

	// from/to RFC3339
	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return HistoryFilter{}, errors.New("from must be RFC3339")
		}
		filter.From = &t
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return HistoryFilter{}, errors.New("to must be RFC3339")
		}
		filter.To = &t
	}

	filter.Query = strings.TrimSpace(r.URL.Query().Get("q"))
	return filter, nil
}

func toRecordResponse(rec ClinicalRecord) recordResponse {
	lines := make([]prescriptionResponse, 0, len(rec.Prescriptions))
	for _, p := range rec.Prescriptions {
		lines = append(lines, prescriptionResponse{
			ID:           p.ID,
			ItemID:       p.ItemID,
			Quantity:     p.Quantity,
			Instructions: p.Instructions,
		})
	}
	return recordResponse{
		ID:            rec.ID,
		AppointmentID: rec.AppointmentID,
		PetID:         rec.PetID,
		Diagnosis:     rec.Diagnosis,
		Treatment:     rec.Treatment,
		Notes:         rec.Notes,
		CreatedAt:     rec.CreatedAt,
		Prescriptions: lines,
	}
}
