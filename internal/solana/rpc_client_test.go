package solana

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func rpcServer(t *testing.T, method string, result interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Method != method {
			t.Errorf("expected method %s, got %s", method, req.Method)
		}
		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  result,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestHTTPClient_SendTransaction(t *testing.T) {
	server := rpcServer(t, "sendTransaction", "5sig111")
	defer server.Close()

	client := NewHTTPClient(server.URL)
	sig, err := client.SendTransaction(context.Background(), "dGVzdA==")
	if err != nil {
		t.Fatalf("SendTransaction: %v", err)
	}
	if sig != "5sig111" {
		t.Errorf("expected signature 5sig111, got %s", sig)
	}
}

func TestHTTPClient_CallObserver(t *testing.T) {
	server := rpcServer(t, "getBalance", map[string]interface{}{"value": 5000})
	defer server.Close()

	var gotMethod string
	var gotSeconds float64
	client := NewHTTPClient(server.URL, WithCallObserver(func(method string, seconds float64) {
		gotMethod = method
		gotSeconds = seconds
	}))

	if _, err := client.GetBalance(context.Background(), "pubkey"); err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if gotMethod != "getBalance" {
		t.Errorf("expected observed method getBalance, got %q", gotMethod)
	}
	if gotSeconds < 0 {
		t.Errorf("expected non-negative duration, got %f", gotSeconds)
	}
}

func TestHTTPClient_SimulateTransaction_Error(t *testing.T) {
	server := rpcServer(t, "simulateTransaction", map[string]interface{}{
		"value": map[string]interface{}{
			"err":  map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}},
			"logs": []string{"Program log: failed"},
		},
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	sim, err := client.SimulateTransaction(context.Background(), "dGVzdA==")
	if err != nil {
		t.Fatalf("SimulateTransaction: %v", err)
	}
	if sim.Err == nil {
		t.Fatal("expected simulation error, got nil")
	}
	if len(sim.Logs) != 1 {
		t.Errorf("expected 1 log line, got %d", len(sim.Logs))
	}
}

func TestHTTPClient_GetSignatureStatuses(t *testing.T) {
	server := rpcServer(t, "getSignatureStatuses", map[string]interface{}{
		"value": []interface{}{
			map[string]interface{}{
				"slot":               int64(5000),
				"confirmations":      nil,
				"err":                nil,
				"confirmationStatus": "finalized",
			},
			nil,
		},
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	statuses, err := client.GetSignatureStatuses(context.Background(), []string{"sig1", "sig2"})
	if err != nil {
		t.Fatalf("GetSignatureStatuses: %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	if statuses[0] == nil || statuses[0].ConfirmationStatus != "finalized" {
		t.Errorf("unexpected first status: %+v", statuses[0])
	}
	if statuses[1] != nil {
		t.Errorf("expected nil status for unknown signature, got %+v", statuses[1])
	}
}

func TestHTTPClient_RetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  map[string]interface{}{"value": uint64(42)},
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithMaxRetries(2), WithRetryDelay(10*time.Millisecond))
	balance, err := client.GetBalance(context.Background(), "somepubkey")
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if balance != 42 {
		t.Errorf("expected balance 42, got %d", balance)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

func TestHTTPClient_RPCErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error":   map[string]interface{}{"code": -32602, "message": "invalid params"},
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithRetryDelay(time.Millisecond))
	_, err := client.SendTransaction(context.Background(), "bad")
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("RPC error should not retry, got %d calls", calls.Load())
	}
}

func TestParseMintAccount(t *testing.T) {
	data := make([]byte, 82)
	// supply = 1_000_000 at offset 36, little endian
	data[36] = 0x40
	data[37] = 0x42
	data[38] = 0x0F
	data[44] = 6 // decimals

	supply, decimals, err := ParseMintAccount(base64.StdEncoding.EncodeToString(data))
	if err != nil {
		t.Fatalf("ParseMintAccount: %v", err)
	}
	if supply != 1000000 {
		t.Errorf("expected supply 1000000, got %d", supply)
	}
	if decimals != 6 {
		t.Errorf("expected decimals 6, got %d", decimals)
	}

	if _, _, err := ParseMintAccount("!!!"); err == nil {
		t.Error("expected error for invalid base64")
	}
	short := base64.StdEncoding.EncodeToString(make([]byte, 10))
	if _, _, err := ParseMintAccount(short); err == nil {
		t.Error("expected error for short data")
	}
}
