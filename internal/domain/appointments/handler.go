package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pet-clinic-ops/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta /appointments y /queue. loc es la zona horaria de la clínica para "day".
func RegisterRoutes(r chi.Router, svc *Service, loc *time.Location) {
	if loc == nil {
		loc = time.UTC
	}

	r.Route("/appointments", func(ar chi.Router) {
		ar.Post("/", bookHandler(svc))
		ar.Get("/", listHandler(svc, loc))
		ar.Get("/{appointmentID}", getHandler(svc))
	})

	r.Route("/queue", func(qr chi.Router) {
		qr.Get("/", queueHandler(svc, loc))
		qr.Post("/status", updateStatusHandler(svc))
	})
}

type bookRequest struct {
	PetID     string    `json:"pet_id"`
	StaffID   string    `json:"staff_id"`
	ServiceID string    `json:"service_id"`
	VisitAt   time.Time `json:"visit_at"`
	Complaint string    `json:"complaint"`
}

type updateStatusRequest struct {
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
}

type appointmentResponse struct {
	ID        string    `json:"id"`
	PetID     string    `json:"pet_id"`
	StaffID   string    `json:"staff_id"`
	ServiceID string    `json:"service_id,omitempty"`
	VisitAt   time.Time `json:"visit_at"`
	Complaint string    `json:"complaint"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// bookHandler godoc
// @Summary Agendar cita
// @Tags appointments
// @Accept json
// @Produce json
// @Param body body bookRequest true "Cita"
// @Success 201 {object} appointmentResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 404 {object} respond.ErrorBody
// @Router /appointments [post]
func bookHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bookRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.BadRequest(w, "invalid json (visit_at must be RFC3339)")
			return
		}
		a, err := svc.Book(r.Context(), BookInput(req))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusCreated, toAppointmentResponse(a))
	}
}

// listHandler godoc
// @Summary Listar citas
// @Tags appointments
// @Produce json
// @Param day query string false "YYYY-MM-DD"
// @Param status query string false "CSV de estados"
// @Param staff_id query string false "Profesional asignado"
// @Param pet_id query string false "Mascota"
// @Param view query string false "active | completed-unbilled"
// @Param limit query int false "1..500"
// @Success 200 {array} appointmentResponse
// @Failure 400 {object} respond.ErrorBody
// @Router /appointments [get]
func listHandler(svc *Service, loc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := parseListQuery(r, loc)
		if err != nil {
			respond.BadRequest(w, err.Error())
			return
		}
		items, err := svc.List(r.Context(), q)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, toAppointmentResponses(items))
	}
}

func getHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.GetByID(r.Context(), chi.URLParam(r, "appointmentID"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, toAppointmentResponse(a))
	}
}

// queueHandler godoc
// @Summary Cola activa del día
// @Tags queue
// @Produce json
// @Param day query string false "YYYY-MM-DD (default hoy)"
// @Param staff_id query string false "Profesional asignado"
// @Success 200 {array} appointmentResponse
// @Router /queue [get]
func queueHandler(svc *Service, loc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day := time.Now().In(loc)
		if v := strings.TrimSpace(r.URL.Query().Get("day")); v != "" {
			d, err := time.ParseInLocation("2006-01-02", v, loc)
			if err != nil {
				respond.BadRequest(w, "day must be YYYY-MM-DD")
				return
			}
			day = d
		}
		items, err := svc.Queue(r.Context(), day, r.URL.Query().Get("staff_id"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, toAppointmentResponses(items))
	}
}

// updateStatusHandler godoc
// @Summary Actualizar estado en la cola
// @Description completed no se puede fijar acá: se alcanza al registrar la ficha clínica.
// @Tags queue
// @Accept json
// @Produce json
// @Param body body updateStatusRequest true "queued | in_progress | cancelled"
// @Success 200 {object} appointmentResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 404 {object} respond.ErrorBody
// @Failure 409 {object} respond.ErrorBody
// @Router /queue/status [post]
func updateStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.BadRequest(w, "invalid json")
			return
		}
		a, err := svc.UpdateQueueStatus(r.Context(), req.AppointmentID, Status(strings.TrimSpace(req.Status)))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, toAppointmentResponse(a))
	}
}

func parseListQuery(r *http.Request, loc *time.Location) (ListQuery, error) {
	q := r.URL.Query()
	out := ListQuery{
		View:    View(strings.TrimSpace(q.Get("view"))),
		StaffID: strings.TrimSpace(q.Get("staff_id")),
		PetID:   strings.TrimSpace(q.Get("pet_id")),
	}

	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return ListQuery{}, errors.New("limit must be a positive integer")
		}
		out.Limit = n
	}

	if v := strings.TrimSpace(q.Get("day")); v != "" {
		d, err := time.ParseInLocation("2006-01-02", v, loc)
		if err != nil {
			return ListQuery{}, errors.New("day must be YYYY-MM-DD")
		}
		out.Day = &d
	}

	// status=queued,in_progress
	if v := strings.TrimSpace(q.Get("status")); v != "" {
		for _, p := range strings.Split(v, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			st, ok := ParseStatus(p)
			if !ok {
				return ListQuery{}, errors.New("unknown status " + p)
			}
			out.Statuses = append(out.Statuses, st)
		}
	}

	return out, nil
}

func toAppointmentResponses(items []Appointment) []appointmentResponse {
	out := make([]appointmentResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toAppointmentResponse(a))
	}
	return out
}

func toAppointmentResponse(a Appointment) appointmentResponse {
	return appointmentResponse{
		ID:        a.ID,
		PetID:     a.PetID,
		StaffID:   a.StaffID,
		ServiceID: a.ServiceID,
		VisitAt:   a.VisitAt,
		Complaint: a.Complaint,
		Status:    a.Status,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
