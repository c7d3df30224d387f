package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"pet-clinic-ops/internal/app"
	"pet-clinic-ops/internal/domain"
	"pet-clinic-ops/internal/router"
	"pet-clinic-ops/internal/seed"
)

type user struct {
	id   string
	role string
}

var (
	doctor       = user{id: "doctor-1", role: "doctor"}
	receptionist = user{id: "reception-1", role: "receptionist"}
	anonymous    = user{}
)

func TestHTTP_EndToEnd_RecordThenBill(t *testing.T) {
	svc := app.NewServices(app.MemoryRepos(), app.Options{})
	demo, err := seed.Demo(context.Background(), svc, time.Now().UTC())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	ts := httptest.NewServer(router.NewRouter(router.Options{Services: svc, Storage: "memory"}))
	defer ts.Close()

	apptID := demo.AppointmentIDs[0]
	amoxID := demo.ItemIDs["Amoxicillin 500mg"]

	// 1) la cita aparece en la cola de hoy
	{
		st, body := doReq(t, ts.URL, "GET", "/queue", receptionist, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 queue, got %d body=%s", st, string(body))
		}
		var q []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		}
		_ = json.Unmarshal(body, &q)
		if len(q) != 2 || q[0].ID != apptID {
			t.Fatalf("unexpected queue: %s", string(body))
		}
	}

	// 2) recepción no puede registrar fichas
	{
		st, _ := doReq(t, ts.URL, "POST", "/records", receptionist, recordPayload(apptID, amoxID, 2))
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 record by receptionist, got %d", st)
		}
	}

	// 3) antes de la ficha no se puede facturar
	{
		st, body := doReq(t, ts.URL, "GET", "/billing/preview/"+apptID, receptionist, nil)
		if st != http.StatusConflict || errorCode(body) != domain.CodeAppointmentNotComplete {
			t.Fatalf("expected 409 APPOINTMENT_NOT_COMPLETED, got %d body=%s", st, string(body))
		}
	}

	// 4) el doctor registra la ficha con 2 Amoxicillin
	{
		st, body := doReq(t, ts.URL, "POST", "/records", doctor, recordPayload(apptID, amoxID, 2))
		if st != http.StatusCreated {
			t.Fatalf("expected 201 record, got %d body=%s", st, string(body))
		}
	}

	// 5) stock 50 -> 48
	{
		st, body := doReq(t, ts.URL, "GET", "/inventory/"+amoxID, receptionist, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 item, got %d body=%s", st, string(body))
		}
		var it struct {
			Quantity int `json:"quantity"`
		}
		_ = json.Unmarshal(body, &it)
		if it.Quantity != 48 {
			t.Fatalf("expected quantity 48, got %d", it.Quantity)
		}
	}

	// 6) una segunda ficha para la misma cita se rechaza
	{
		st, body := doReq(t, ts.URL, "POST", "/records", doctor, recordPayload(apptID, amoxID, 1))
		if st != http.StatusConflict || errorCode(body) != domain.CodeAppointmentNotEligible {
			t.Fatalf("expected 409 APPOINTMENT_NOT_ELIGIBLE, got %d body=%s", st, string(body))
		}
	}

	// 7) preview = consulta + 2 x precio
	want := decimal.NewFromInt(150000).Add(decimal.NewFromInt(15000).Mul(decimal.NewFromInt(2)))
	{
		st, body := doReq(t, ts.URL, "GET", "/billing/preview/"+apptID, receptionist, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 preview, got %d body=%s", st, string(body))
		}
		var p struct {
			Lines    []json.RawMessage `json:"lines"`
			Subtotal decimal.Decimal   `json:"subtotal"`
		}
		if err := json.Unmarshal(body, &p); err != nil {
			t.Fatalf("decode preview: %v", err)
		}
		if len(p.Lines) != 2 {
			t.Fatalf("expected 2 lines, got %d", len(p.Lines))
		}
		if !p.Subtotal.Equal(want) {
			t.Fatalf("expected subtotal %s, got %s", want, p.Subtotal)
		}
	}

	// 8) generate: total = subtotal
	var invoiceID string
	{
		st, body := doReq(t, ts.URL, "POST", "/billing/generate", receptionist, map[string]any{
			"appointment_id": apptID,
			"payment_method": "Transfer",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 generate, got %d body=%s", st, string(body))
		}
		var inv struct {
			ID       string          `json:"id"`
			Subtotal decimal.Decimal `json:"subtotal"`
			Total    decimal.Decimal `json:"total"`
		}
		if err := json.Unmarshal(body, &inv); err != nil {
			t.Fatalf("decode invoice: %v", err)
		}
		if !inv.Total.Equal(want) || !inv.Subtotal.Equal(want) {
			t.Fatalf("expected total %s, got subtotal=%s total=%s", want, inv.Subtotal, inv.Total)
		}
		invoiceID = inv.ID
	}

	// 9) repetir generate => ALREADY_BILLED; la preview también
	{
		st, body := doReq(t, ts.URL, "POST", "/billing/generate", receptionist, map[string]any{
			"appointment_id": apptID,
		})
		if st != http.StatusConflict || errorCode(body) != domain.CodeAlreadyBilled {
			t.Fatalf("expected 409 ALREADY_BILLED, got %d body=%s", st, string(body))
		}

		st, body = doReq(t, ts.URL, "GET", "/billing/preview/"+apptID, receptionist, nil)
		if st != http.StatusConflict || errorCode(body) != domain.CodeAlreadyBilled {
			t.Fatalf("expected 409 ALREADY_BILLED on preview, got %d body=%s", st, string(body))
		}
	}

	// 10) la factura y su PDF
	{
		st, body := doReq(t, ts.URL, "GET", "/invoices/"+invoiceID, receptionist, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 invoice, got %d body=%s", st, string(body))
		}
		st, body = doReq(t, ts.URL, "GET", "/invoices/"+invoiceID+"/pdf", receptionist, nil)
		if st != http.StatusOK || !bytes.HasPrefix(body, []byte("%PDF")) {
			t.Fatalf("expected pdf, got %d", st)
		}
	}

	// 11) la cita completada ya no está en la cola activa
	{
		st, body := doReq(t, ts.URL, "GET", "/queue", receptionist, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 queue, got %d", st)
		}
		var q []struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(body, &q)
		if len(q) != 1 || q[0].ID == apptID {
			t.Fatalf("unexpected queue after completion: %s", string(body))
		}
	}
}

func TestHTTP_InsufficientStock_ReportsItem(t *testing.T) {
	svc := app.NewServices(app.MemoryRepos(), app.Options{})
	demo, err := seed.Demo(context.Background(), svc, time.Now().UTC())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	ts := httptest.NewServer(router.NewRouter(router.Options{Services: svc}))
	defer ts.Close()

	fleaID := demo.ItemIDs["Flea Drops"]
	st, body := doReq(t, ts.URL, "POST", "/records", doctor, recordPayload(demo.AppointmentIDs[0], fleaID, 5))
	if st != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", st, string(body))
	}

	var eb struct {
		Code    string `json:"code"`
		Details struct {
			ItemID    string `json:"item_id"`
			Requested int    `json:"requested"`
			Available int    `json:"available"`
		} `json:"details"`
	}
	_ = json.Unmarshal(body, &eb)
	if eb.Code != domain.CodeInsufficientStock || eb.Details.ItemID != fleaID || eb.Details.Available != 2 || eb.Details.Requested != 5 {
		t.Fatalf("unexpected error body: %s", string(body))
	}

	// la cita sigue activa
	st, body = doReq(t, ts.URL, "GET", "/appointments/"+demo.AppointmentIDs[0], receptionist, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200, got %d", st)
	}
	var a struct {
		Status string `json:"status"`
	}
	_ = json.Unmarshal(body, &a)
	if a.Status != "queued" {
		t.Fatalf("expected queued after rollback, got %q", a.Status)
	}
}

func TestHTTP_QueueTransitions(t *testing.T) {
	svc := app.NewServices(app.MemoryRepos(), app.Options{})
	demo, err := seed.Demo(context.Background(), svc, time.Now().UTC())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	ts := httptest.NewServer(router.NewRouter(router.Options{Services: svc}))
	defer ts.Close()

	id := demo.AppointmentIDs[1]
	steps := []struct {
		status   string
		wantCode int
	}{
		{"in_progress", http.StatusOK},
		{"queued", http.StatusOK},
		{"completed", http.StatusBadRequest},
		{"cancelled", http.StatusOK},
		{"queued", http.StatusConflict},
	}
	for _, s := range steps {
		st, body := doReq(t, ts.URL, "POST", "/queue/status", receptionist, map[string]any{
			"appointment_id": id,
			"status":         s.status,
		})
		if st != s.wantCode {
			t.Fatalf("status %s: expected %d, got %d body=%s", s.status, s.wantCode, st, string(body))
		}
	}
}

func TestHTTP_AuthAndHealth(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	if st, _ := doReq(t, ts.URL, "GET", "/health", anonymous, nil); st != http.StatusOK {
		t.Fatalf("expected 200 health, got %d", st)
	}
	if st, _ := doReq(t, ts.URL, "GET", "/ready", anonymous, nil); st != http.StatusOK {
		t.Fatalf("expected 200 ready, got %d", st)
	}
	if st, _ := doReq(t, ts.URL, "GET", "/inventory", anonymous, nil); st != http.StatusUnauthorized {
		t.Fatalf("expected 401 without user, got %d", st)
	}
	if st, _ := doReq(t, ts.URL, "POST", "/billing/generate", doctor, map[string]any{"appointment_id": "x"}); st != http.StatusForbidden {
		t.Fatalf("expected 403 billing by doctor, got %d", st)
	}
}

func recordPayload(apptID, itemID string, qty int) map[string]any {
	return map[string]any{
		"appointment_id": apptID,
		"diagnosis":      "Upper respiratory infection",
		"treatment":      "Antibiotics for five days",
		"prescriptions": []map[string]any{
			{"item_id": itemID, "quantity": qty, "instructions": "1 tab twice a day"},
		},
	}
}

func errorCode(body []byte) string {
	var eb struct {
		Code string `json:"code"`
	}
	_ = json.Unmarshal(body, &eb)
	return eb.Code
}

func doReq(t *testing.T, baseURL, method, path string, u user, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if u.id != "" {
		req.Header.Set("X-Debug-User-ID", u.id)
		req.Header.Set("X-Debug-Role", u.role)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
