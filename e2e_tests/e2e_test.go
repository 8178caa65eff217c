package e2etests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

const (
	defaultBaseURL = "http://localhost:8080"
	timeout        = 5 * time.Second
	waitReady      = 20 * time.Second
)

var httpClient = &http.Client{Timeout: timeout}

func baseURL() string {
	if u := os.Getenv("E2E_BASE_URL"); u != "" {
		return u
	}

	return defaultBaseURL
}

// Seeded by cmd/migrator test data.
const seededUserID = 1

func TestE2E_BankFlow(t *testing.T) {
	waitUntilReady(t)

	sid := createSession(t, "e2e-bank")

	code, body := call(t, http.MethodPost, "/sessions/"+sid+"/login", map[string]any{"userId": seededUserID})
	if code != http.StatusAccepted {
		t.Fatalf("login: want 202, got %d (%s)", code, body)
	}

	waitIdentified(t, sid)

	start := bankBalance(t, sid)

	t.Run("deposit_increases_balance", func(t *testing.T) {
		code, body := call(t, http.MethodPost, "/sessions/"+sid+"/bank/deposit", map[string]any{"amount": 1_000})
		if code != http.StatusOK {
			t.Fatalf("deposit: want 200, got %d (%s)", code, body)
		}

		if got := bankBalance(t, sid); got != start+1_000 {
			t.Fatalf("after deposit: want %d, got %d", start+1_000, got)
		}
	})

	t.Run("overdraw_conflict", func(t *testing.T) {
		code, body := call(t, http.MethodPost, "/sessions/"+sid+"/bank/withdraw",
			map[string]any{"amount": start + 1_001})
		if code != http.StatusConflict {
			t.Fatalf("overdraw: want 409, got %d (%s)", code, body)
		}

		if got := bankBalance(t, sid); got != start+1_000 {
			t.Fatalf("after overdraw: want %d, got %d", start+1_000, got)
		}
	})

	t.Run("negative_amount_rejected", func(t *testing.T) {
		code, _ := call(t, http.MethodPost, "/sessions/"+sid+"/bank/withdraw", map[string]any{"amount": -1})
		if code != http.StatusBadRequest {
			t.Fatalf("negative withdraw: want 400, got %d", code)
		}
	})

	t.Run("withdraw_restores_balance", func(t *testing.T) {
		code, body := call(t, http.MethodPost, "/sessions/"+sid+"/bank/withdraw", map[string]any{"amount": 1_000})
		if code != http.StatusOK {
			t.Fatalf("withdraw: want 200, got %d (%s)", code, body)
		}

		if got := bankBalance(t, sid); got != start {
			t.Fatalf("after withdraw: want %d, got %d", start, got)
		}
	})

	code, body = call(t, http.MethodDelete, "/sessions/"+sid, nil)
	if code != http.StatusNoContent {
		t.Fatalf("disconnect: want 204, got %d (%s)", code, body)
	}
}

func TestE2E_CashIsPerSession(t *testing.T) {
	waitUntilReady(t)

	a := createSession(t, "e2e-cash-a")
	b := createSession(t, "e2e-cash-b")

	code, body := call(t, http.MethodPut, "/sessions/"+a+"/cash", map[string]any{"amount": 250})
	if code != http.StatusOK {
		t.Fatalf("set cash: want 200, got %d (%s)", code, body)
	}

	var drained struct {
		Delta int64 `json:"delta"`
	}

	code, body = call(t, http.MethodPost, "/sessions/"+a+"/cash/grants/drain", nil)
	if code != http.StatusOK {
		t.Fatalf("drain: want 200, got %d (%s)", code, body)
	}

	decode(t, body, &drained)

	if drained.Delta != 250 {
		t.Fatalf("drained delta: want 250, got %d", drained.Delta)
	}

	var cash struct {
		Cash int64 `json:"cash"`
	}

	_, body = call(t, http.MethodGet, "/sessions/"+b+"/cash", nil)
	decode(t, body, &cash)

	if cash.Cash != 0 {
		t.Fatalf("other session cash: want 0, got %d", cash.Cash)
	}

	call(t, http.MethodDelete, "/sessions/"+a, nil)
	call(t, http.MethodDelete, "/sessions/"+b, nil)

	code, _ = call(t, http.MethodGet, "/sessions/"+a+"/cash", nil)
	if code != http.StatusNotFound {
		t.Fatalf("cash after disconnect: want 404, got %d", code)
	}
}

/* -------------------- helpers -------------------- */

func call(t *testing.T, method, path string, payload any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(t.Context(), method, baseURL()+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)

	return resp.StatusCode, b
}

func decode(t *testing.T, body []byte, dst any) {
	t.Helper()

	err := json.Unmarshal(body, dst)
	if err != nil {
		t.Fatalf("decode json %q: %v", body, err)
	}
}

func createSession(t *testing.T, name string) string {
	t.Helper()

	code, body := call(t, http.MethodPost, "/sessions", map[string]string{"name": name})
	if code != http.StatusCreated {
		t.Fatalf("create session: want 201, got %d (%s)", code, body)
	}

	var payload struct {
		SessionID string `json:"sessionId"`
	}

	decode(t, body, &payload)

	return payload.SessionID
}

func bankBalance(t *testing.T, sid string) int64 {
	t.Helper()

	code, body := call(t, http.MethodGet, "/sessions/"+sid+"/bank", nil)
	if code != http.StatusOK {
		t.Fatalf("GET bank: want 200, got %d (%s)", code, body)
	}

	var payload struct {
		Balance int64 `json:"balance"`
	}

	decode(t, body, &payload)

	return payload.Balance
}

// waitIdentified polls the account until the asynchronous load has finished.
func waitIdentified(t *testing.T, sid string) {
	t.Helper()

	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		_, body := call(t, http.MethodGet, "/sessions/"+sid+"/account", nil)

		var payload struct {
			Identified bool `json:"identified"`
			Loading    bool `json:"loading"`
		}

		decode(t, body, &payload)

		if payload.Identified {
			return
		}

		if !payload.Loading {
			t.Fatalf("session %s finished loading without an account", sid)
		}

		time.Sleep(50 * time.Millisecond)
	}

	t.Fatalf("session %s not identified within %s", sid, timeout)
}

// waitUntilReady waits until GET /healthz responds 200. The suite is skipped
// when no server comes up in time.
func waitUntilReady(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(t.Context(), waitReady)
	defer cancel()

	u := fmt.Sprintf("%s/healthz", baseURL())

	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			t.Skipf("service not ready at %s within %s", u, waitReady)
		case <-tick.C:
			req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)

			resp, err := httpClient.Do(req)
			if err != nil {
				continue
			}

			_ = resp.Body.Close()

			if resp.StatusCode == http.StatusOK {
				return
			}
		}
	}
}
