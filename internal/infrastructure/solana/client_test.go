package solana

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/fumble-tracker/internal/config"
)

const (
	testWallet    = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"
	testSignature = "5VERv8NMvzbJMEkV8xnrLkEaWRtSz9CosKDYjCJjBRnbJLgp8uirBgmQpjKhoR4tjF3ZpRzrFmBV6UjKdiSZkQUW"
)

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// fakeRPC answers JSON-RPC calls with canned results keyed by method
type fakeRPC struct {
	mu      sync.Mutex
	results map[string]string
	methods []string
	params  map[string][]json.RawMessage
}

func newFakeRPC(results map[string]string) (*fakeRPC, *httptest.Server) {
	f := &fakeRPC{results: results, params: make(map[string][]json.RawMessage)}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		f.mu.Lock()
		f.methods = append(f.methods, req.Method)
		f.params[req.Method] = req.Params
		result, ok := f.results[req.Method]
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if !ok {
			w.Write([]byte(`{"jsonrpc":"2.0","error":{"code":-32601,"message":"Method not found"},"id":` + string(req.ID) + `}`))
			return
		}
		w.Write([]byte(`{"jsonrpc":"2.0","result":` + result + `,"id":` + string(req.ID) + `}`))
	}))
	return f, server
}

func newTestClient(url string) *Client {
	return NewClient(config.SolanaConfig{RPCURL: url, RequestTimeout: 2 * time.Second}, zap.NewNop())
}

func TestClient_GetBalance(t *testing.T) {
	_, server := newFakeRPC(map[string]string{
		"getBalance": `{"context":{"slot":1},"value":2500000000}`,
	})
	defer server.Close()

	client := newTestClient(server.URL)

	lamports, err := client.GetBalance(context.Background(), testWallet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lamports != 2_500_000_000 {
		t.Errorf("expected 2500000000 lamports, got %d", lamports)
	}
}

func TestClient_GetTokenBalances(t *testing.T) {
	_, server := newFakeRPC(map[string]string{
		"getTokenAccountsByOwner": `{"context":{"slot":1},"value":[
			{"pubkey":"7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU","account":{
				"data":{"program":"spl-token","parsed":{"type":"account","info":{
					"mint":"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
					"owner":"9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM",
					"tokenAmount":{"amount":"1500000","decimals":6,"uiAmount":1.5,"uiAmountString":"1.5"}}},"space":165},
				"executable":false,"lamports":2039280,"owner":"TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA","rentEpoch":0}}
		]}`,
	})
	defer server.Close()

	client := newTestClient(server.URL)

	balances, err := client.GetTokenBalances(context.Background(), testWallet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(balances) != 1 {
		t.Fatalf("expected 1 balance, got %d", len(balances))
	}
	if balances[0].AssetID != usdcMint || balances[0].Amount.String() != "1.5" {
		t.Errorf("unexpected balance: %+v", balances[0])
	}
}

func TestClient_GetTokenBalancesSkipsAccountsWithoutData(t *testing.T) {
	_, server := newFakeRPC(map[string]string{
		"getTokenAccountsByOwner": `{"context":{"slot":1},"value":[
			{"pubkey":"7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU","account":{
				"executable":false,"lamports":2039280,"owner":"TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA","rentEpoch":0}}
		]}`,
	})
	defer server.Close()

	balances, err := newTestClient(server.URL).GetTokenBalances(context.Background(), testWallet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(balances) != 0 {
		t.Errorf("expected no balances, got %+v", balances)
	}
}

func TestClient_GetSignatures(t *testing.T) {
	fake, server := newFakeRPC(map[string]string{
		"getSignaturesForAddress": `[{"signature":"` + testSignature + `","slot":1,"err":null,"memo":null,"blockTime":1700000000}]`,
	})
	defer server.Close()

	client := newTestClient(server.URL)

	sigs, err := client.GetSignatures(context.Background(), testWallet, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sigs) != 1 || sigs[0] != testSignature {
		t.Errorf("unexpected signatures: %v", sigs)
	}

	fake.mu.Lock()
	params := fake.params["getSignaturesForAddress"]
	fake.mu.Unlock()
	if len(params) != 2 {
		t.Fatalf("expected address and options params, got %d", len(params))
	}
	var opts struct {
		Limit int `json:"limit"`
	}
	if err := json.Unmarshal(params[1], &opts); err != nil || opts.Limit != 7 {
		t.Errorf("expected limit 7, got %s", params[1])
	}
}

func TestClient_GetTransactionNotFound(t *testing.T) {
	_, server := newFakeRPC(map[string]string{
		"getTransaction": `null`,
	})
	defer server.Close()

	client := newTestClient(server.URL)

	tx, err := client.GetTransaction(context.Background(), testSignature)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx != nil {
		t.Errorf("expected nil transaction, got %+v", tx)
	}
}

func TestClient_GetTransactionInvalidSignature(t *testing.T) {
	fake, server := newFakeRPC(nil)
	defer server.Close()

	client := newTestClient(server.URL)

	if _, err := client.GetTransaction(context.Background(), "not-a-signature"); err == nil {
		t.Fatal("expected error for malformed signature")
	}
	if len(fake.methods) != 0 {
		t.Errorf("expected no RPC calls, got %v", fake.methods)
	}
}

func TestClient_RPCError(t *testing.T) {
	_, server := newFakeRPC(map[string]string{})
	defer server.Close()

	client := newTestClient(server.URL)

	if _, err := client.GetBalance(context.Background(), testWallet); err == nil {
		t.Fatal("expected error from RPC error response")
	}
}

func TestClient_HealthCheck(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		_, server := newFakeRPC(map[string]string{"getHealth": `"ok"`})
		defer server.Close()

		if err := newTestClient(server.URL).HealthCheck(context.Background()); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("node behind", func(t *testing.T) {
		_, server := newFakeRPC(map[string]string{})
		defer server.Close()

		if err := newTestClient(server.URL).HealthCheck(context.Background()); err == nil {
			t.Error("expected error when node is unhealthy")
		}
	})

	t.Run("bounded by request timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer server.Close()

		client := NewClient(config.SolanaConfig{RPCURL: server.URL, RequestTimeout: 50 * time.Millisecond}, zap.NewNop())

		start := time.Now()
		if err := client.HealthCheck(context.Background()); err == nil {
			t.Fatal("expected timeout error")
		}
		if elapsed := time.Since(start); elapsed > time.Second {
			t.Errorf("health check took %v, expected it to stop at the request timeout", elapsed)
		}
	})
}
