package invoices

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"pet-clinic-ops/internal/middleware"
	"pet-clinic-ops/internal/platform/respond"
	"pet-clinic-ops/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/invoices/{invoiceID}", func(ir chi.Router) {
		ir.Get("/", getInvoiceHandler(svc))
		ir.Get("/pdf", invoicePDFHandler(svc))
		ir.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleReceptionist)).Delete("/", deleteInvoiceHandler(svc))
	})

	r.Get("/owners/{ownerID}/invoices", statementHandler(svc))
}

type lineResponse struct {
	Kind        LineKind        `json:"kind"`
	RefID       string          `json:"ref_id"`
	Description string          `json:"description"`
	Unit        string          `json:"unit,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type InvoiceResponse struct {
	ID            string          `json:"id"`
	AppointmentID string          `json:"appointment_id"`
	OwnerID       string          `json:"owner_id"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	CreatedAt     time.Time       `json:"created_at"`
	Lines         []lineResponse  `json:"lines"`
}

// getInvoiceHandler godoc
// @Summary Detalle de factura
// @Tags invoices
// @Produce json
// @Param invoiceID path string true "Invoice ID"
// @Success 200 {object} InvoiceResponse
// @Failure 404 {object} respond.ErrorBody
// @Router /invoices/{invoiceID} [get]
func getInvoiceHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inv, err := svc.GetByID(r.Context(), chi.URLParam(r, "invoiceID"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, ToResponse(inv))
	}
}

// invoicePDFHandler godoc
// @Summary Factura en PDF
// @Tags invoices
// @Produce application/pdf
// @Param invoiceID path string true "Invoice ID"
// @Success 200 {file} binary
// @Failure 404 {object} respond.ErrorBody
// @Router /invoices/{invoiceID}/pdf [get]
func invoicePDFHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "invoiceID")

		var buf bytes.Buffer
		if err := svc.RenderPDF(r.Context(), id, &buf); err != nil {
			respond.Error(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", "inline; filename=invoice-"+id+".pdf")
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}

func deleteInvoiceHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())
		if err := svc.Delete(r.Context(), chi.URLParam(r, "invoiceID"), claims.UserID); err != nil {
			respond.Error(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// statementHandler godoc
// @Summary Estado de cuenta del dueño
// @Tags invoices
// @Produce json
// @Param ownerID path string true "Owner ID"
// @Param limit query int false "1..200 (default 50)"
// @Success 200 {array} InvoiceResponse
// @Failure 404 {object} respond.ErrorBody
// @Router /owners/{ownerID}/invoices [get]
func statementHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
				limit = n
			}
		}

		items, err := svc.Statement(r.Context(), chi.URLParam(r, "ownerID"), limit)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		out := make([]InvoiceResponse, 0, len(items))
		for _, inv := range items {
			out = append(out, ToResponse(inv))
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

// ToResponse se comparte con billing para devolver la factura recién emitida.
func ToResponse(inv Invoice) InvoiceResponse {
	lines := make([]lineResponse, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		lines = append(lines, lineResponse{
			Kind:        l.Kind,
			RefID:       l.RefID,
			Description: l.Description,
			Unit:        l.Unit,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
			Subtotal:    l.Subtotal,
		})
	}
	return InvoiceResponse{
		ID:            inv.ID,
		AppointmentID: inv.AppointmentID,
		OwnerID:       inv.OwnerID,
		Subtotal:      inv.Subtotal,
		Discount:      inv.Discount,
		Total:         inv.Total,
		PaymentMethod: inv.PaymentMethod,
		CreatedAt:     inv.CreatedAt,
		Lines:         lines,
	}
}
