package inventory

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pet-clinic-ops/internal/middleware"
	"pet-clinic-ops/internal/platform/respond"
	"pet-clinic-ops/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/inventory", func(ir chi.Router) {
		ir.Get("/", listItemsHandler(svc))
		ir.Get("/{itemID}", getItemHandler(svc))

		ir.Group(func(wr chi.Router) {
			wr.Use(middleware.RequireRole(auth.RoleAdmin, auth.RoleReceptionist))
			wr.Post("/", createItemHandler(svc))
			wr.Patch("/{itemID}", updateItemHandler(svc))
			wr.Post("/{itemID}/restock", restockHandler(svc))
			wr.Delete("/{itemID}", deleteItemHandler(svc))
		})
	})
}

type createItemRequest struct {
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Unit      string          `json:"unit"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

type updateItemRequest struct {
	Name      *string          `json:"name"`
	Category  *string          `json:"category"`
	Unit      *string          `json:"unit"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

type restockRequest struct {
	Quantity int `json:"quantity"`
}

type itemResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Unit      string          `json:"unit"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LowStock  bool            `json:"low_stock"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// listItemsHandler godoc
// @Summary Listar inventario
// @Tags inventory
// @Produce json
// @Param category query string false "Categoría"
// @Param low_stock query bool false "Solo items bajo el umbral"
// @Param q query string false "Búsqueda por nombre"
// @Success 200 {array} itemResponse
// @Router /inventory [get]
func listItemsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := ListFilter{
			Category: strings.TrimSpace(q.Get("category")),
			Query:    strings.TrimSpace(q.Get("q")),
		}
		if raw := strings.TrimSpace(q.Get("low_stock")); raw != "" {
			low, err := strconv.ParseBool(raw)
			if err != nil {
				respond.BadRequest(w, "low_stock must be a boolean")
				return
			}
			if low {
				f.LowStockBelow = svc.LowStockThreshold()
			}
		}

		items, err := svc.List(r.Context(), f)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		out := make([]itemResponse, 0, len(items))
		for _, it := range items {
			out = append(out, toItemResponse(it, svc.LowStockThreshold()))
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

func getItemHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		it, err := svc.GetByID(r.Context(), chi.URLParam(r, "itemID"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, toItemResponse(it, svc.LowStockThreshold()))
	}
}

// createItemHandler godoc
// @Summary Crear item de inventario
// @Tags inventory
// @Accept json
// @Produce json
// @Param body body createItemRequest true "Item"
// @Success 201 {object} itemResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 403 {object} respond.ErrorBody
// @Router /inventory [post]
func createItemHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.BadRequest(w, "invalid json")
			return
		}
		it, err := svc.Create(r.Context(), CreateInput(req))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusCreated, toItemResponse(it, svc.LowStockThreshold()))
	}
}

func updateItemHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req updateItemRequest
		if err := dec.Decode(&req); err != nil {
			// quantity no se edita acá: solo restock o consumo por receta
			respond.BadRequest(w, "invalid json (quantity changes go through /restock)")
			return
		}
		it, err := svc.UpdateDetails(r.Context(), chi.URLParam(r, "itemID"), UpdateInput(req))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, toItemResponse(it, svc.LowStockThreshold()))
	}
}

// restockHandler godoc
// @Summary Reponer stock
// @Tags inventory
// @Accept json
// @Produce json
// @Param itemID path string true "Item ID"
// @Param body body restockRequest true "Cantidad a sumar"
// @Success 200 {object} itemResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 404 {object} respond.ErrorBody
// @Router /inventory/{itemID}/restock [post]
func restockHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req restockRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.BadRequest(w, "invalid json")
			return
		}
		it, err := svc.Restock(r.Context(), chi.URLParam(r, "itemID"), req.Quantity)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, toItemResponse(it, svc.LowStockThreshold()))
	}
}

func deleteItemHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "itemID")); err != nil {
			respond.Error(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toItemResponse(it StockItem, threshold int) itemResponse {
	return itemResponse{
		ID:        it.ID,
		Name:      it.Name,
		Category:  it.Category,
		Unit:      it.Unit,
		UnitPrice: it.UnitPrice,
		Quantity:  it.Quantity,
		LowStock:  it.Quantity < threshold,
		UpdatedAt: it.UpdatedAt,
	}
}
