package billing

import (
	"encoding/json"
	"net/http"
	"time"

	"pet-clinic-ops/internal/domain/invoices"
	"pet-clinic-ops/internal/middleware"
	"pet-clinic-ops/internal/platform/respond"
	"pet-clinic-ops/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/billing", func(br chi.Router) {
		br.Use(middleware.RequireRole(auth.RoleAdmin, auth.RoleReceptionist))
		br.Get("/preview/{appointmentID}", previewHandler(svc))
		br.Post("/generate", generateHandler(svc))
	})
}

type previewLine struct {
	Kind        invoices.LineKind `json:"kind"`
	RefID       string            `json:"ref_id"`
	Description string            `json:"description"`
	Unit        string            `json:"unit,omitempty"`
	UnitPrice   decimal.Decimal   `json:"unit_price"`
	Quantity    int               `json:"quantity"`
	Subtotal    decimal.Decimal   `json:"subtotal"`
}

type previewResponse struct {
	AppointmentID string          `json:"appointment_id"`
	VisitAt       time.Time       `json:"visit_at"`
	Complaint     string          `json:"complaint"`
	OwnerID       string          `json:"owner_id"`
	OwnerName     string          `json:"owner_name"`
	OwnerPhone    string          `json:"owner_phone"`
	PetID         string          `json:"pet_id"`
	PetName       string          `json:"pet_name"`
	Species       string          `json:"species"`
	DoctorID      string          `json:"doctor_id"`
	DoctorName    string          `json:"doctor_name"`
	ServiceSource ServiceSource   `json:"service_source"`
	Lines         []previewLine   `json:"lines"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

type generateRequest struct {
	AppointmentID string          `json:"appointment_id"`
	PaymentMethod string          `json:"payment_method"`
	Discount      decimal.Decimal `json:"discount"`
}

// previewHandler godoc
// @Summary Borrador de factura
// @Description Solo lectura. Precios vigentes; falla si la cita no está completed o ya tiene factura.
// @Tags billing
// @Produce json
// @Param appointmentID path string true "Appointment ID"
// @Success 200 {object} previewResponse
// @Failure 404 {object} respond.ErrorBody
// @Failure 409 {object} respond.ErrorBody "ALREADY_BILLED o APPOINTMENT_NOT_COMPLETED"
// @Router /billing/preview/{appointmentID} [get]
func previewHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.PreviewBill(r.Context(), chi.URLParam(r, "appointmentID"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, toPreviewResponse(p))
	}
}

// generateHandler godoc
// @Summary Emitir factura
// @Description Emite la factura una sola vez por cita; repetir devuelve ALREADY_BILLED.
// @Tags billing
// @Accept json
// @Produce json
// @Param body body generateRequest true "Pago"
// @Success 201 {object} invoices.InvoiceResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 404 {object} respond.ErrorBody
// @Failure 409 {object} respond.ErrorBody
// @Router /billing/generate [post]
func generateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.BadRequest(w, "invalid json")
			return
		}
		inv, err := svc.GenerateBill(r.Context(), GenerateInput(req))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusCreated, invoices.ToResponse(inv))
	}
}

func toPreviewResponse(p BillPreview) previewResponse {
	lines := make([]previewLine, 0, len(p.Lines))
	for _, l := range p.Lines {
		lines = append(lines, previewLine{
			Kind:        l.Kind,
			RefID:       l.RefID,
			Description: l.Description,
			Unit:        l.Unit,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
			Subtotal:    l.Subtotal,
		})
	}
	return previewResponse{
		AppointmentID: p.AppointmentID,
		VisitAt:       p.VisitAt,
		Complaint:     p.Complaint,
		OwnerID:       p.Owner.ID,
		OwnerName:     p.Owner.Name,
		OwnerPhone:    p.Owner.Phone,
		PetID:         p.Pet.ID,
		PetName:       p.Pet.Name,
		Species:       string(p.Pet.Species),
		DoctorID:      p.Doctor.ID,
		DoctorName:    p.Doctor.Name,
		ServiceSource: p.ServiceSource,
		Lines:         lines,
		Subtotal:      p.Subtotal,
	}
}
