package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kasboek/internal/config"
	"kasboek/internal/core"
	"kasboek/internal/ledger"
	"kasboek/internal/ledger/memory"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:               "0",
		LedgerBackend:      "memory",
		IncomeAccount:      "kasboek",
		BillpayAccount:     "billpay",
		ShowTransactions:   true,
		RecentTransactions: 3,
		PageCacheTTL:       time.Minute,
		SnapshotInterval:   time.Hour,
		SQLiteDBPath:       "./test.db",
	}
}

func newTestServer(t *testing.T, store *memory.Store, cfg *config.Config) *Server {
	t.Helper()
	srv := NewServer(":0", store, ledger.NewResolver(store), cfg)
	t.Cleanup(func() {
		srv.janitor.Stop()
		srv.rateLimiter.stop()
	})
	return srv
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestBalancePage(t *testing.T) {
	srv := newTestServer(t, memory.Seed(), testConfig())

	rec := get(t, srv, "/balance")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "€1234.56") {
		t.Fatalf("balance missing from page: %s", body)
	}
	if !strings.Contains(body, `spent €5.00 for &#34;lunch&#34;`) && !strings.Contains(body, "spent €5.00 for") {
		t.Fatalf("spent line missing from page: %s", body)
	}
	if !strings.Contains(body, "someone donated €10.00, thanks!") {
		t.Fatalf("donation line missing from page: %s", body)
	}
}

func TestBalancePageCached(t *testing.T) {
	store := memory.Seed()
	srv := newTestServer(t, store, testConfig())

	first := get(t, srv, "/balance")
	if first.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", first.Code)
	}

	// New activity within the TTL must not show up yet.
	store.AddPayments(1, core.Payment{
		CreatedAt:   "2024-05-21 08:00:00.000000",
		Amount:      core.FromCents("EUR", -12300),
		Description: "surprise",
	})
	second := get(t, srv, "/balance")
	if strings.Contains(second.Body.String(), "surprise") {
		t.Fatalf("page should have been served from cache")
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("cached page differs from original")
	}
}

func TestScheduledPage(t *testing.T) {
	srv := newTestServer(t, memory.Seed(), testConfig())

	rec := get(t, srv, "/scheduled")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "€-8.00 scheduled next month") {
		t.Fatalf("outgoing total missing: %s", body)
	}
	if !strings.Contains(body, "1 of 1 standing orders") {
		t.Fatalf("counts missing: %s", body)
	}
}

func TestBillpayPage(t *testing.T) {
	store := memory.Seed()
	store.AddPayments(2,
		core.Payment{CreatedAt: "2024-05-10 09:00:00.000000", Amount: core.FromCents("EUR", -200), Description: "electricity", Counterparty: "Grid Co"},
		core.Payment{CreatedAt: "2024-04-20 09:00:00.000000", Amount: core.FromCents("EUR", -100), Description: "water", Counterparty: "Waterworks"},
	)
	srv := newTestServer(t, store, testConfig())

	rec := get(t, srv, "/billpay?month=2024-05")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Waterworks") {
		t.Fatalf("last month payment missing: %s", body)
	}
	if !strings.Contains(body, "outgoing") {
		t.Fatalf("sign class missing: %s", body)
	}
}

func TestBillpayNotConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.BillpayAccount = ""
	srv := newTestServer(t, memory.Seed(), cfg)

	if rec := get(t, srv, "/billpay"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestBillpayBadMonth(t *testing.T) {
	srv := newTestServer(t, memory.Seed(), testConfig())
	if rec := get(t, srv, "/billpay?month=May"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUnknownAccountIs404(t *testing.T) {
	cfg := testConfig()
	cfg.IncomeAccount = "ghost"
	srv := newTestServer(t, memory.Seed(), cfg)

	if rec := get(t, srv, "/balance"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, memory.Seed(), testConfig())
	for _, path := range []string{"/healthz", "/readyz"} {
		if rec := get(t, srv, path); rec.Code != http.StatusOK {
			t.Fatalf("%s expected 200, got %d", path, rec.Code)
		}
	}
}
