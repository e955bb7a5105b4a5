package onchaincommerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/onchaincommerce/onchaincommerce/commerce"
	"github.com/onchaincommerce/onchaincommerce/store"
	"github.com/onchaincommerce/onchaincommerce/tracker"
	"github.com/onchaincommerce/onchaincommerce/types"
)

type fakeProvider struct{}

func (fakeProvider) Request(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	switch method {
	case "wallet_switchEthereumChain":
		return json.RawMessage(`null`), nil
	case "eth_requestAccounts":
		return json.RawMessage(`["0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B"]`), nil
	default:
		return nil, fmt.Errorf("unexpected method %s", method)
	}
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "dashboard.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return st
}

func newTestDashboard(t *testing.T, cfg *types.Config) (*Dashboard, *store.Store) {
	t.Helper()
	st := newTestStore(t)
	return New(cfg, st), st
}

func expectInvalidState(t *testing.T, err error) {
	t.Helper()
	var terr *types.Error
	if !errors.As(err, &terr) || terr.Code != types.ErrInvalidState {
		t.Fatalf("expected INVALID_STATE, got %v", err)
	}
}

func TestDashboard_StartsDisconnected(t *testing.T) {
	d, _ := newTestDashboard(t, nil)
	if d.State() != StateDisconnected {
		t.Fatalf("expected disconnected, got %s", d.State())
	}
}

func TestConnectWallet_MovesToAwaitingCredential(t *testing.T) {
	d, _ := newTestDashboard(t, nil)

	state, err := d.ConnectWallet(context.Background(), fakeProvider{})
	if err != nil {
		t.Fatalf("ConnectWallet failed: %v", err)
	}
	if state != StateAwaitingCredential {
		t.Fatalf("expected awaiting_credential, got %s", state)
	}
}

func TestConnectWallet_CachedCredentialSkipsPrompt(t *testing.T) {
	st := newTestStore(t)
	if err := st.SetAPIKey("sk-cached"); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	d := New(nil, st)

	state, err := d.ConnectWallet(context.Background(), fakeProvider{})
	if err != nil {
		t.Fatalf("ConnectWallet failed: %v", err)
	}
	if state != StateAuthenticated {
		t.Fatalf("cached credential must authenticate directly, got %s", state)
	}
}

func TestConnectWallet_RejectedWhenAlreadyConnected(t *testing.T) {
	d, _ := newTestDashboard(t, nil)
	if _, err := d.ConnectWallet(context.Background(), fakeProvider{}); err != nil {
		t.Fatalf("first connect failed: %v", err)
	}

	_, err := d.ConnectWallet(context.Background(), fakeProvider{})
	expectInvalidState(t, err)
}

// logoutDuringHandshakeProvider logs the dashboard out mid-handshake,
// after the chain switch but before the account is returned.
type logoutDuringHandshakeProvider struct {
	dashboard *Dashboard
}

func (p *logoutDuringHandshakeProvider) Request(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	switch method {
	case "wallet_switchEthereumChain":
		return json.RawMessage(`null`), nil
	case "eth_requestAccounts":
		if err := p.dashboard.Logout(); err != nil {
			return nil, err
		}
		return json.RawMessage(`["0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B"]`), nil
	default:
		return nil, fmt.Errorf("unexpected method %s", method)
	}
}

func TestConnectWallet_SupersededByLogout(t *testing.T) {
	d, _ := newTestDashboard(t, nil)

	_, err := d.ConnectWallet(context.Background(), &logoutDuringHandshakeProvider{dashboard: d})
	expectInvalidState(t, err)

	if d.State() != StateDisconnected {
		t.Fatalf("logout must win over a late connect, got %s", d.State())
	}

	// The stale wallet session must be torn down too.
	_, err = d.TokenBalance(context.Background())
	var terr *types.Error
	if !errors.As(err, &terr) || terr.Code != types.ErrNoWalletSession {
		t.Fatalf("expected NO_WALLET_SESSION after superseded connect, got %v", err)
	}
}

func TestSubmitAPIKey(t *testing.T) {
	d, st := newTestDashboard(t, nil)
	if _, err := d.ConnectWallet(context.Background(), fakeProvider{}); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	state, err := d.SubmitAPIKey("sk-test")
	if err != nil {
		t.Fatalf("SubmitAPIKey failed: %v", err)
	}
	if state != StateAuthenticated {
		t.Fatalf("expected authenticated, got %s", state)
	}

	key, ok := st.APIKey()
	if !ok || key != "sk-test" {
		t.Fatalf("credential not persisted, got %q (%v)", key, ok)
	}
}

func TestSubmitAPIKey_RequiresAwaitingCredential(t *testing.T) {
	d, _ := newTestDashboard(t, nil)
	_, err := d.SubmitAPIKey("sk-test")
	expectInvalidState(t, err)
}

func TestSubmitAPIKey_RejectsEmpty(t *testing.T) {
	d, _ := newTestDashboard(t, nil)
	if _, err := d.ConnectWallet(context.Background(), fakeProvider{}); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	_, err := d.SubmitAPIKey("")
	var terr *types.Error
	if !errors.As(err, &terr) || terr.Code != types.ErrValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if d.State() != StateAwaitingCredential {
		t.Fatalf("state must not advance, got %s", d.State())
	}
}

func TestOperationsRequireAuthentication(t *testing.T) {
	d, _ := newTestDashboard(t, nil)
	ctx := context.Background()

	if _, err := d.CreateCharge(ctx, commerce.CreateChargeRequest{}); err == nil {
		t.Fatal("CreateCharge must be gated")
	}
	if _, err := d.PaymentHistory(ctx); err == nil {
		t.Fatal("PaymentHistory must be gated")
	}
	if _, err := d.WatchCharge(ctx, "charge-1", func(tracker.Result) {}); err == nil {
		t.Fatal("WatchCharge must be gated")
	}
	if err := d.SendPaymentLink(ctx, "+15551234567", "https://example.com"); err == nil {
		t.Fatal("SendPaymentLink must be gated")
	}
}

func TestLogout_ClearsEverything(t *testing.T) {
	d, st := newTestDashboard(t, nil)
	ctx := context.Background()
	if _, err := d.ConnectWallet(ctx, fakeProvider{}); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	if _, err := d.SubmitAPIKey("sk-test"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if err := d.Logout(); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	if d.State() != StateDisconnected {
		t.Fatalf("expected disconnected, got %s", d.State())
	}
	if _, ok := st.APIKey(); ok {
		t.Fatal("credential survived logout")
	}
	if _, err := d.PaymentHistory(ctx); err == nil {
		t.Fatal("operations must be gated again after logout")
	}

	// A fresh connect after logout prompts for the credential again.
	state, err := d.ConnectWallet(ctx, fakeProvider{})
	if err != nil {
		t.Fatalf("reconnect failed: %v", err)
	}
	if state != StateAwaitingCredential {
		t.Fatalf("expected awaiting_credential after logout, got %s", state)
	}
}

func TestPaymentHistory_EndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-CC-Api-Key"); got != "sk-test" {
			t.Errorf("credential not forwarded, got %q", got)
		}
		fmt.Fprint(w, `{"pagination":{"next_uri":""},"data":[{"id":"charge-1","timeline":[{"status":"COMPLETED","time":"2026-08-29T10:00:00Z"}],"pricing":{"local":{"amount":"12.00","currency":"USD"}}}]}`)
	}))
	defer server.Close()

	d, _ := newTestDashboard(t, &types.Config{CommerceBaseURL: server.URL})
	ctx := context.Background()
	if _, err := d.ConnectWallet(ctx, fakeProvider{}); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	if _, err := d.SubmitAPIKey("sk-test"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	charges, err := d.PaymentHistory(ctx)
	if err != nil {
		t.Fatalf("PaymentHistory failed: %v", err)
	}
	if len(charges) != 1 || charges[0].ID != "charge-1" {
		t.Fatalf("unexpected history %+v", charges)
	}
}

func TestSubscriptions_Roundtrip(t *testing.T) {
	d, _ := newTestDashboard(t, nil)

	want := []store.Subscription{{ID: "sub-1", Name: "Coffee club", Amount: "9.99", Currency: "USD", Interval: "monthly"}}
	if err := d.SaveSubscriptions(want); err != nil {
		t.Fatalf("SaveSubscriptions failed: %v", err)
	}

	got, err := d.Subscriptions()
	if err != nil || len(got) != 1 || got[0] != want[0] {
		t.Fatalf("roundtrip mismatch: %+v (%v)", got, err)
	}
}
