package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/punchamoorthee/payflow/internal/domain"
	"github.com/punchamoorthee/payflow/internal/ledger"
	"github.com/punchamoorthee/payflow/internal/worker"
)

type createUserRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond(w, r, http.StatusBadRequest, map[string]string{"error": "malformed JSON body"})
		return
	}
	if req.ID == "" || req.Phone == "" {
		h.respond(w, r, http.StatusUnprocessableEntity, map[string]string{"error": "id and phone are required"})
		return
	}

	u, err := h.users.Create(req.ID, req.Name, req.Phone)
	if err != nil {
		h.respond(w, r, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	h.respond(w, r, http.StatusCreated, u)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.ByID(mux.Vars(r)["id"])
	if err != nil {
		h.respond(w, r, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}
	h.respond(w, r, http.StatusOK, u)
}

type registerBankRequest struct {
	Name string `json:"name"`
	Up   bool   `json:"up"`
}

func (h *Handler) RegisterBank(w http.ResponseWriter, r *http.Request) {
	var req registerBankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		h.respond(w, r, http.StatusBadRequest, map[string]string{"error": "bank name required"})
		return
	}
	b := h.banks.Register(req.Name, req.Up)
	h.respond(w, r, http.StatusCreated, b)
}

type openAccountRequest struct {
	Number         string          `json:"number"`
	Bank           string          `json:"bank"`
	OwnerID        string          `json:"owner_id"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

func (h *Handler) OpenAccount(w http.ResponseWriter, r *http.Request) {
	var req openAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond(w, r, http.StatusBadRequest, map[string]string{"error": "malformed JSON body"})
		return
	}

	owner, err := h.users.ByID(req.OwnerID)
	if err != nil {
		h.respond(w, r, http.StatusNotFound, map[string]string{"error": "owner not found"})
		return
	}
	bank, err := h.banks.Resolve(req.Bank)
	if err != nil {
		h.respond(w, r, statusForError(err), map[string]string{"error": err.Error()})
		return
	}

	acc, err := h.accounts.Open(req.Number, bank, req.OpeningBalance, owner)
	if err != nil {
		h.respond(w, r, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	h.respond(w, r, http.StatusCreated, accountView(acc))
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	acc, err := h.accounts.Lookup(vars["bank"], vars["number"])
	if err != nil {
		h.respond(w, r, http.StatusNotFound, map[string]string{"error": "account not found"})
		return
	}
	h.respond(w, r, http.StatusOK, accountView(acc))
}

type transferRequest struct {
	FromUserID  string `json:"from_user_id"`
	FromBank    string `json:"from_bank"`
	FromAccount string `json:"from_account"`

	// Payee may be addressed by user id, phone, or bank account.
	ToUserID  string `json:"to_user_id,omitempty"`
	ToPhone   string `json:"to_phone,omitempty"`
	ToBank    string `json:"to_bank,omitempty"`
	ToAccount string `json:"to_account,omitempty"`

	Amount decimal.Decimal `json:"amount"`
}

// resolveTransfer turns the wire request into concrete parties. When
// the payee is addressed without an explicit account, their primary
// account receives the money.
func (h *Handler) resolveTransfer(req transferRequest) (payer *domain.User, src *domain.Account, payee *domain.User, dst *domain.Account, err error) {
	payer, err = h.users.ByID(req.FromUserID)
	if err != nil {
		return
	}
	src, err = h.accounts.Lookup(req.FromBank, req.FromAccount)
	if err != nil {
		return
	}

	switch {
	case req.ToUserID != "":
		payee, err = h.users.ByID(req.ToUserID)
	case req.ToPhone != "":
		payee, err = h.users.ByPhone(req.ToPhone)
	case req.ToBank != "" && req.ToAccount != "":
		var ownerID string
		ownerID, err = h.accounts.Owner(req.ToBank, req.ToAccount)
		if err == nil {
			payee, err = h.users.ByID(ownerID)
		}
	default:
		err = domain.ErrUserNotFound
	}
	if err != nil {
		return
	}

	if req.ToBank != "" && req.ToAccount != "" {
		dst, err = h.accounts.Lookup(req.ToBank, req.ToAccount)
	} else {
		dst, err = h.accounts.Primary(payee)
	}
	return
}

func (h *Handler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/transfers"))
	defer timer.ObserveDuration()

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond(w, r, http.StatusBadRequest, map[string]string{"error": "malformed JSON body"})
		return
	}

	payer, src, payee, dst, err := h.resolveTransfer(req)
	if err != nil {
		h.respond(w, r, statusForError(err), map[string]string{"error": err.Error()})
		return
	}

	tx, err := h.engine.Transfer(r.Context(), payer, src, payee, dst, req.Amount)
	if err != nil {
		if errors.Is(err, domain.ErrReconciliationTimeout) {
			// The transfer's local effects stand; surface the PENDING
			// transaction so the caller can track it.
			h.respond(w, r, http.StatusGatewayTimeout, map[string]interface{}{
				"error":       err.Error(),
				"transaction": tx.View(),
			})
			return
		}
		h.respond(w, r, statusForError(err), map[string]string{"error": err.Error()})
		return
	}
	h.respond(w, r, http.StatusCreated, tx.View())
}

// CreateTransferAsync enqueues the transfer on the worker pool and
// answers 202, or 429 when the queue is full.
func (h *Handler) CreateTransferAsync(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond(w, r, http.StatusBadRequest, map[string]string{"error": "malformed JSON body"})
		return
	}

	payer, src, payee, dst, err := h.resolveTransfer(req)
	if err != nil {
		h.respond(w, r, statusForError(err), map[string]string{"error": err.Error()})
		return
	}

	job := worker.TransferJob{
		RequestID: uuid.NewString(),
		Payer:     payer,
		Src:       src,
		Payee:     payee,
		Dst:       dst,
		Amount:    req.Amount,
	}
	if !h.pool.Submit(job) {
		h.respond(w, r, http.StatusTooManyRequests, map[string]string{"error": "transfer queue full"})
		return
	}
	h.respond(w, r, http.StatusAccepted, map[string]string{
		"status":     string(domain.StatusPending),
		"request_id": job.RequestID,
	})
}

func (h *Handler) GetStatement(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]
	if _, err := h.users.ByID(userID); err != nil {
		h.respond(w, r, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}

	q := r.URL.Query()
	f := ledger.Filter{
		Counterparty: q.Get("counterparty"),
		Type:         domain.EntryType(q.Get("type")),
		Bank:         q.Get("bank"),
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.respond(w, r, http.StatusBadRequest, map[string]string{"error": "from must be RFC3339"})
			return
		}
		f.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.respond(w, r, http.StatusBadRequest, map[string]string{"error": "to must be RFC3339"})
			return
		}
		f.To = t
	}

	entries := h.recorder.Statement(userID, f)
	if entries == nil {
		entries = []*domain.LedgerEntry{}
	}
	h.respond(w, r, http.StatusOK, entries)
}

// accountView avoids exposing the lock-guarded balance field directly.
func accountView(acc *domain.Account) map[string]interface{} {
	return map[string]interface{}{
		"number":  acc.Number,
		"bank":    acc.Bank,
		"user_id": acc.UserID,
		"status":  acc.Status,
		"primary": acc.Primary,
		"balance": acc.Balance(),
	}
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInactiveAccount),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrSameAccount):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrBankUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrUnknownBank),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateAccount),
		errors.Is(err, domain.ErrDuplicatePhone):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respond writes the payload and counts the request.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, code int, payload interface{}) {
	endpoint := r.URL.Path
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			endpoint = tpl
		}
	}
	httpRequestsTotal.WithLabelValues(r.Method, endpoint, strconv.Itoa(code)).Inc()
	respondWithJSON(w, code, payload)
}
