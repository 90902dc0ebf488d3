package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/punchamoorthee/payflow/internal/ledger"
	"github.com/punchamoorthee/payflow/internal/psp"
	"github.com/punchamoorthee/payflow/internal/service"
	"github.com/punchamoorthee/payflow/internal/store"
	"github.com/punchamoorthee/payflow/internal/worker"
)

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()

	users := store.NewUserDirectory()
	banks := store.NewBankDirectory()
	accounts := store.NewAccountRegistry()
	recorder := ledger.NewRecorder()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := service.NewEngine(banks, recorder, psp.NewInstant(), logger, service.Config{})
	pool := worker.NewPool(1, engine, logger)
	pool.Start(1)
	t.Cleanup(pool.Shutdown)

	h := NewHandler(users, banks, accounts, recorder, engine, pool, logger)

	r := mux.NewRouter()
	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.HandleFunc("/users", h.CreateUser).Methods("POST")
	apiV1.HandleFunc("/users/{id}", h.GetUser).Methods("GET")
	apiV1.HandleFunc("/users/{id}/statement", h.GetStatement).Methods("GET")
	apiV1.HandleFunc("/banks", h.RegisterBank).Methods("POST")
	apiV1.HandleFunc("/accounts", h.OpenAccount).Methods("POST")
	apiV1.HandleFunc("/accounts/{bank}/{number}", h.GetAccount).Methods("GET")
	apiV1.HandleFunc("/transfers", h.CreateTransfer).Methods("POST")
	apiV1.HandleFunc("/transfers/async", h.CreateTransferAsync).Methods("POST")
	return r
}

func doJSON(t *testing.T, r *mux.Router, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func seedWorld(t *testing.T, r *mux.Router) {
	t.Helper()

	steps := []struct {
		path    string
		payload map[string]interface{}
	}{
		{"/api/v1/banks", map[string]interface{}{"name": "HDFC", "up": true}},
		{"/api/v1/banks", map[string]interface{}{"name": "ICICI", "up": true}},
		{"/api/v1/users", map[string]interface{}{"id": "U1", "name": "Alice", "phone": "999"}},
		{"/api/v1/users", map[string]interface{}{"id": "U2", "name": "Bob", "phone": "888"}},
		{"/api/v1/accounts", map[string]interface{}{"number": "A1", "bank": "HDFC", "owner_id": "U1", "opening_balance": "1000"}},
		{"/api/v1/accounts", map[string]interface{}{"number": "A2", "bank": "ICICI", "owner_id": "U2", "opening_balance": "500"}},
	}
	for _, s := range steps {
		if rec := doJSON(t, r, "POST", s.path, s.payload); rec.Code != http.StatusCreated {
			t.Fatalf("seeding %s: %d %s", s.path, rec.Code, rec.Body.String())
		}
	}
}

func TestCreateUserDuplicatePhone(t *testing.T) {
	r := newTestRouter(t)

	payload := map[string]interface{}{"id": "U1", "name": "Alice", "phone": "999"}
	if rec := doJSON(t, r, "POST", "/api/v1/users", payload); rec.Code != http.StatusCreated {
		t.Fatalf("first create: %d", rec.Code)
	}
	payload["id"] = "U2"
	if rec := doJSON(t, r, "POST", "/api/v1/users", payload); rec.Code != http.StatusConflict {
		t.Errorf("duplicate phone: %d, want 409", rec.Code)
	}
}

func TestTransferEndpoint(t *testing.T) {
	r := newTestRouter(t)
	seedWorld(t, r)

	transfer := map[string]interface{}{
		"from_user_id": "U1",
		"from_bank":    "HDFC",
		"from_account": "A1",
		"to_bank":      "ICICI",
		"to_account":   "A2",
		"amount":       "200",
	}

	rec := doJSON(t, r, "POST", "/api/v1/transfers", transfer)
	if rec.Code != http.StatusCreated {
		t.Fatalf("transfer: %d %s", rec.Code, rec.Body.String())
	}
	var view struct {
		Status string `json:"status"`
		Amount string `json:"amount"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatal(err)
	}
	if view.Status != "SUCCESS" {
		t.Errorf("status = %s, want SUCCESS", view.Status)
	}

	t.Run("balances moved", func(t *testing.T) {
		rec := doJSON(t, r, "GET", "/api/v1/accounts/HDFC/A1", nil)
		var acc struct {
			Balance string `json:"balance"`
		}
		json.Unmarshal(rec.Body.Bytes(), &acc)
		if acc.Balance != "800" {
			t.Errorf("payer balance = %s, want 800", acc.Balance)
		}
	})

	t.Run("insufficient balance maps to 422", func(t *testing.T) {
		transfer["amount"] = "100000"
		if rec := doJSON(t, r, "POST", "/api/v1/transfers", transfer); rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("overdraft: %d, want 422", rec.Code)
		}
	})

	t.Run("statement", func(t *testing.T) {
		rec := doJSON(t, r, "GET", "/api/v1/users/U1/statement?type=DEBIT", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("statement: %d", rec.Code)
		}
		var entries []map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &entries)
		if len(entries) != 1 {
			t.Errorf("debit entries = %d, want 1", len(entries))
		}
	})
}

func TestTransferPayeeByPhone(t *testing.T) {
	r := newTestRouter(t)
	seedWorld(t, r)

	// No destination account given: Bob's primary (A2) receives.
	transfer := map[string]interface{}{
		"from_user_id": "U1",
		"from_bank":    "HDFC",
		"from_account": "A1",
		"to_phone":     "888",
		"amount":       "50",
	}
	if rec := doJSON(t, r, "POST", "/api/v1/transfers", transfer); rec.Code != http.StatusCreated {
		t.Fatalf("transfer by phone: %d %s", rec.Code, rec.Body.String())
	}

	rec := doJSON(t, r, "GET", "/api/v1/accounts/ICICI/A2", nil)
	var acc struct {
		Balance string `json:"balance"`
	}
	json.Unmarshal(rec.Body.Bytes(), &acc)
	if acc.Balance != "550" {
		t.Errorf("payee primary balance = %s, want 550", acc.Balance)
	}
}

func TestBankDownMapsTo503(t *testing.T) {
	r := newTestRouter(t)
	seedWorld(t, r)

	if rec := doJSON(t, r, "POST", "/api/v1/banks", map[string]interface{}{"name": "IDFC", "up": false}); rec.Code != http.StatusCreated {
		t.Fatal("registering a down bank should succeed")
	}
	// Opening an account through a down bank fails at resolution.
	open := map[string]interface{}{"number": "A9", "bank": "IDFC", "owner_id": "U1", "opening_balance": "100"}
	if rec := doJSON(t, r, "POST", "/api/v1/accounts", open); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("open via down bank: %d, want 503", rec.Code)
	}
}

func TestAsyncTransferAccepted(t *testing.T) {
	r := newTestRouter(t)
	seedWorld(t, r)

	transfer := map[string]interface{}{
		"from_user_id": "U1",
		"from_bank":    "HDFC",
		"from_account": "A1",
		"to_user_id":   "U2",
		"amount":       "10",
	}
	rec := doJSON(t, r, "POST", "/api/v1/transfers/async", transfer)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("async transfer: %d %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Status    string `json:"status"`
		RequestID string `json:"request_id"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Status != "PENDING" || resp.RequestID == "" {
		t.Errorf("async response = %+v", resp)
	}
}
