package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fastprodman/playerledger/internal/services/accounts"
	"github.com/fastprodman/playerledger/internal/services/finance"
	"github.com/fastprodman/playerledger/internal/services/natives"
	"github.com/fastprodman/playerledger/internal/sessions"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Deps are the services exposed over HTTP.
type Deps struct {
	Registry  *sessions.Registry
	Regulator *finance.Regulator
	Accounts  *accounts.Manager
	Grants    *natives.GrantQueue
}

// HandlerProvider exposes the ledger and session lifecycle as HTTP handlers.
type HandlerProvider struct {
	deps Deps
}

// NewHandler returns a new Handler provider.
func NewHandler(deps Deps) *HandlerProvider {
	return &HandlerProvider{deps: deps}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeBody reads a JSON body into dst, rejecting unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}

		return errors.New("invalid JSON")
	}

	return nil
}

// parseSessionIDFromPath reads `{sessionId}` from chi routes.
func parseSessionIDFromPath(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "sessionId")
	if raw == "" {
		return uuid.Nil, errors.New("missing sessionId")
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid sessionId: %w", err)
	}

	return id, nil
}

// lookupSession resolves the path session or writes the error response.
func (h *HandlerProvider) lookupSession(w http.ResponseWriter, r *http.Request) (*sessions.Session, bool) {
	id, err := parseSessionIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid sessionId in path")
		return nil, false
	}

	s, ok := h.deps.Registry.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}

	return s, true
}

func bankErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, finance.ErrInvalidAmount):
		return http.StatusBadRequest, "amount must not be negative"
	case errors.Is(err, finance.ErrLimitExceeded):
		return http.StatusConflict, "bank balance limit exceeded"
	case errors.Is(err, finance.ErrInsufficientFundsOrLimit):
		return http.StatusConflict, "insufficient funds"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// --- Session lifecycle ---

type createSessionRequest struct {
	Name string `json:"name"`
}

type sessionResponse struct {
	SessionID uuid.UUID `json:"sessionId"`
	Name      string    `json:"name"`
}

// CreateSessionHandler handles POST /sessions
func (h *HandlerProvider) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "name required")
		return
	}

	s := h.deps.Registry.Create(name)

	writeJSON(w, http.StatusCreated, sessionResponse{SessionID: s.ID(), Name: s.Name()})
}

// DestroySessionHandler handles DELETE /sessions/{sessionId}
func (h *HandlerProvider) DestroySessionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseSessionIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid sessionId in path")
		return
	}

	if !h.deps.Registry.Destroy(id) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type loginRequest struct {
	UserID uint64 `json:"userId"`
}

// LoginHandler handles POST /sessions/{sessionId}/login. The account is
// loaded asynchronously; the response only acknowledges the request.
func (h *HandlerProvider) LoginHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}

	var req loginRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.UserID == 0 {
		writeError(w, http.StatusBadRequest, "userId must be positive")
		return
	}

	err = h.deps.Accounts.HandleLogin(s.ID(), req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrAlreadyIdentified):
			writeError(w, http.StatusConflict, "session already logged in")
		case errors.Is(err, accounts.ErrLoginInProgress):
			writeError(w, http.StatusConflict, "login already in progress")
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}

		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "loading"})
}

type guestLoginRequest struct {
	Name string `json:"name"`
}

// GuestLoginHandler handles POST /sessions/{sessionId}/guest-login
func (h *HandlerProvider) GuestLoginHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}

	var req guestLoginRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.deps.Accounts.HandleGuestLogin(s.ID(), strings.TrimSpace(req.Name))

	writeJSON(w, http.StatusOK, sessionResponse{SessionID: s.ID(), Name: s.Name()})
}

type registeredRequest struct {
	Registered *bool `json:"registered"`
}

// SetRegisteredHandler handles PUT /sessions/{sessionId}/registered
func (h *HandlerProvider) SetRegisteredHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}

	var req registeredRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Registered == nil {
		writeError(w, http.StatusBadRequest, "registered required")
		return
	}

	if !h.deps.Accounts.SetIsRegistered(s.ID(), *req.Registered) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type accountResponse struct {
	SessionID   uuid.UUID `json:"sessionId"`
	Name        string    `json:"name"`
	UserID      uint64    `json:"userId,omitempty"`
	Identified  bool      `json:"identified"`
	Loading     bool      `json:"loading"`
	Registered  bool      `json:"registered"`
	Level       string    `json:"level"`
	LevelIsTemp bool      `json:"levelIsTemporary"`
	Vip         bool      `json:"vip"`
	GangID      uint64    `json:"gangId,omitempty"`
	BankBalance int64     `json:"bankBalance"`
	Cash        int64     `json:"cash"`
}

// GetAccountHandler handles GET /sessions/{sessionId}/account
func (h *HandlerProvider) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}

	acc := s.Account()

	writeJSON(w, http.StatusOK, accountResponse{
		SessionID:   s.ID(),
		Name:        s.Name(),
		UserID:      acc.UserID(),
		Identified:  acc.IsIdentified(),
		Loading:     h.deps.Accounts.IsLoading(s.ID()),
		Registered:  acc.IsRegistered(),
		Level:       acc.Level().String(),
		LevelIsTemp: acc.LevelIsTemporary(),
		Vip:         acc.IsVip(),
		GangID:      acc.GangID(),
		BankBalance: h.deps.Regulator.GetBankBalance(s),
		Cash:        h.deps.Regulator.GetCash(s),
	})
}

// --- Cash ---

type setCashRequest struct {
	Amount     *int64 `json:"amount"`
	Adjustment bool   `json:"adjustment"`
}

// GetCashHandler handles GET /sessions/{sessionId}/cash
func (h *HandlerProvider) GetCashHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"cash": h.deps.Regulator.GetCash(s)})
}

// SetCashHandler handles PUT /sessions/{sessionId}/cash. Out-of-range
// amounts are saturated, never rejected.
func (h *HandlerProvider) SetCashHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}

	var req setCashRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Amount == nil {
		writeError(w, http.StatusBadRequest, "amount required")
		return
	}

	h.deps.Regulator.SetCash(s, *req.Amount, req.Adjustment)

	writeJSON(w, http.StatusOK, map[string]int64{"cash": h.deps.Regulator.GetCash(s)})
}

// DrainGrantsHandler handles POST /sessions/{sessionId}/cash/grants/drain.
// The engine bridge calls it to collect money it still has to give.
func (h *HandlerProvider) DrainGrantsHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"delta": h.deps.Grants.Drain(s.ID())})
}

// --- Bank ---

type amountRequest struct {
	Amount *int64 `json:"amount"`
}

// GetBankBalanceHandler handles GET /sessions/{sessionId}/bank
func (h *HandlerProvider) GetBankBalanceHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"balance": h.deps.Regulator.GetBankBalance(s)})
}

// DepositHandler handles POST /sessions/{sessionId}/bank/deposit
func (h *HandlerProvider) DepositHandler(w http.ResponseWriter, r *http.Request) {
	h.bankOperation(w, r, h.deps.Regulator.Deposit)
}

// WithdrawHandler handles POST /sessions/{sessionId}/bank/withdraw
func (h *HandlerProvider) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	h.bankOperation(w, r, h.deps.Regulator.Withdraw)
}

func (h *HandlerProvider) bankOperation(
	w http.ResponseWriter,
	r *http.Request,
	op func(s *sessions.Session, amount int64) error,
) {
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}

	var req amountRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Amount == nil {
		writeError(w, http.StatusBadRequest, "amount required")
		return
	}

	err = op(s, *req.Amount)
	if err != nil {
		status, msg := bankErrorStatus(err)
		writeError(w, status, msg)

		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"balance": h.deps.Regulator.GetBankBalance(s)})
}
