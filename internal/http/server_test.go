package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"tally/internal/core"
	"tally/internal/geoip"
	"tally/internal/ledger"
	"tally/internal/log"
	"tally/internal/services"
	"tally/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *services.EntryService) {
	t.Helper()
	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	store := storage.NewMemoryStore()
	l := ledger.New(store, logger)
	svc := services.NewEntryService(l, store, nil, logger)

	s := NewServer(":0", svc, 16, time.Minute)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s, svc
}

func postForm(s *Server, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.Handler.ServeHTTP(w, req)
	return w
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.Handler.ServeHTTP(w, req)
	return w
}

func today() string {
	return core.Today().String()
}

func TestHealthEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	if w := get(s, "/healthz"); w.Code != http.StatusOK {
		t.Fatalf("healthz: %d", w.Code)
	}
	if w := get(s, "/readyz"); w.Code != http.StatusOK {
		t.Fatalf("readyz: %d", w.Code)
	}
}

func TestCreateIncome(t *testing.T) {
	s, _ := newTestServer(t)

	w := postForm(s, "/income", url.Values{
		"occupation": {"plumber"},
		"amount":     {"1500.00"},
		"date":       {today()},
		"type":       {"wages"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Income recorded") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
	if w.Header().Get("HX-Trigger") != "ledger:changed" {
		t.Fatal("mutation must announce ledger:changed")
	}
}

func TestCreateIncomeValidationFailure(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []url.Values{
		{"occupation": {"plumber"}, "amount": {"-5"}, "date": {today()}, "type": {"wages"}},
		{"occupation": {""}, "amount": {"100"}, "date": {today()}, "type": {"wages"}},
		{"occupation": {"plumber"}, "amount": {"100"}, "date": {"nonsense"}, "type": {"wages"}},
		{"occupation": {"plumber"}, "amount": {"100"}, "date": {today()}, "type": {"bonus"}},
	}
	for i, form := range tests {
		if w := postForm(s, "/income", form); w.Code != http.StatusUnprocessableEntity {
			t.Errorf("case %d: expected 422, got %d: %s", i, w.Code, w.Body.String())
		}
	}
}

func TestCreateExpense(t *testing.T) {
	s, _ := newTestServer(t)

	w := postForm(s, "/expenses", url.Values{
		"item":     {"coffee"},
		"price":    {"2,50"},
		"quantity": {"3"},
		"date":     {today()},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	overview := get(s, "/ui/overview")
	if overview.Code != http.StatusOK {
		t.Fatalf("overview: %d", overview.Code)
	}
	if !strings.Contains(overview.Body.String(), "7.50") {
		t.Fatalf("derived total missing from overview: %s", overview.Body.String())
	}
}

func TestDeleteFlow(t *testing.T) {
	s, svc := newTestServer(t)

	entry, err := svc.CreateExpense(context.Background(), "desk", "120", "1", today())
	if err != nil {
		t.Fatal(err)
	}

	w := postForm(s, "/expenses/"+strconv.FormatInt(entry.ID, 10)+"/delete", url.Values{})
	if w.Code != http.StatusOK {
		t.Fatalf("delete: %d: %s", w.Code, w.Body.String())
	}
	// Deleting again must 404.
	w = postForm(s, "/expenses/"+strconv.FormatInt(entry.ID, 10)+"/delete", url.Values{})
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete: %d", w.Code)
	}
	// Non-numeric id is a bad request.
	if w := postForm(s, "/expenses/abc/delete", url.Values{}); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: %d", w.Code)
	}
}

func TestUpdateFlow(t *testing.T) {
	s, svc := newTestServer(t)

	entry, err := svc.CreateIncome(context.Background(), "plumber", "100", today(), "wages")
	if err != nil {
		t.Fatal(err)
	}

	w := postForm(s, "/income/"+strconv.FormatInt(entry.ID, 10), url.Values{
		"occupation": {"plumber"},
		"amount":     {"250"},
		"date":       {today()},
		"type":       {"salary"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update: %d: %s", w.Code, w.Body.String())
	}

	w = postForm(s, "/income/999999", url.Values{
		"occupation": {"x"}, "amount": {"10"}, "date": {today()}, "type": {"wages"},
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("update missing: %d", w.Code)
	}
}

func TestOverviewSalarySuppression(t *testing.T) {
	s, svc := newTestServer(t)
	ctx := context.Background()

	if _, err := svc.CreateIncome(ctx, "writer", "1000", today(), "salary"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateIncome(ctx, "gardener", "200", today(), "wages"); err != nil {
		t.Fatal(err)
	}

	body := get(s, "/ui/overview").Body.String()
	if !strings.Contains(body, "1,200.00") {
		t.Fatalf("income total missing: %s", body)
	}
	// The income card hides weekly/daily when salary is present; the
	// expense card always shows them.
	if got := strings.Count(body, "This week"); got != 1 {
		t.Fatalf("expected one weekly row (expenses only), got %d", got)
	}
}

func TestOverviewUsesSessionCurrency(t *testing.T) {
	s, svc := newTestServer(t)
	ctx := context.Background()

	if err := svc.ApplyLocation(ctx, geoip.Location{City: "Rome", Country: "Italy", Currency: "EUR"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateIncome(ctx, "writer", "1000", today(), "wages"); err != nil {
		t.Fatal(err)
	}

	body := get(s, "/ui/overview").Body.String()
	if !strings.Contains(body, "€1,000.00") {
		t.Fatalf("expected euro formatting: %s", body)
	}
	if !strings.Contains(body, "Rome, Italy") {
		t.Fatalf("expected location label: %s", body)
	}
}

func TestOverviewDefaultsToDollarFormatting(t *testing.T) {
	s, svc := newTestServer(t)

	if _, err := svc.CreateIncome(context.Background(), "writer", "1000", today(), "wages"); err != nil {
		t.Fatal(err)
	}

	body := get(s, "/ui/overview").Body.String()
	if !strings.Contains(body, "$1,000.00") {
		t.Fatalf("expected USD formatting before any locale resolves: %s", body)
	}
}

func TestOverviewNotCachedAcrossLocaleChange(t *testing.T) {
	s, svc := newTestServer(t)
	ctx := context.Background()

	if _, err := svc.CreateIncome(ctx, "writer", "1000", today(), "wages"); err != nil {
		t.Fatal(err)
	}
	// Warm the cache with the default currency.
	if body := get(s, "/ui/overview").Body.String(); !strings.Contains(body, "$1,000.00") {
		t.Fatalf("expected USD formatting: %s", body)
	}

	if err := svc.ApplyLocation(ctx, geoip.Location{City: "Rome", Country: "Italy", Currency: "EUR"}); err != nil {
		t.Fatal(err)
	}

	body := get(s, "/ui/overview").Body.String()
	if !strings.Contains(body, "€1,000.00") {
		t.Fatalf("cached overview served past locale change: %s", body)
	}
}

func TestOverviewUnsupportedCurrencyFallsBack(t *testing.T) {
	s, svc := newTestServer(t)
	ctx := context.Background()

	if err := svc.ApplyLocation(ctx, geoip.Location{Country: "Atlantis", Currency: "ZZZ"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateIncome(ctx, "writer", "1000", today(), "wages"); err != nil {
		t.Fatal(err)
	}

	body := get(s, "/ui/overview").Body.String()
	if !strings.Contains(body, "1,000.00") {
		t.Fatalf("expected plain formatting fallback: %s", body)
	}
}

func TestOverviewCacheInvalidatedOnMutation(t *testing.T) {
	s, _ := newTestServer(t)

	first := get(s, "/ui/overview").Body.String()
	if strings.Contains(first, "plumber") {
		t.Fatal("unexpected entry before creation")
	}

	postForm(s, "/income", url.Values{
		"occupation": {"plumber"},
		"amount":     {"100"},
		"date":       {today()},
		"type":       {"wages"},
	})

	second := get(s, "/ui/overview").Body.String()
	if !strings.Contains(second, "plumber") {
		t.Fatal("overview still stale after mutation")
	}
}

func TestIndexRenders(t *testing.T) {
	s, _ := newTestServer(t)

	w := get(s, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("index: %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Add income") || !strings.Contains(body, "Add expense") {
		t.Fatalf("forms missing from index: %s", body)
	}
	if !strings.Contains(body, "Net balance") {
		t.Fatal("overview missing from index")
	}
	// The date inputs are prefilled with the same day the summaries use.
	if !strings.Contains(body, `value="`+today()+`"`) {
		t.Fatal("date inputs not prefilled with the reference day")
	}
}

func TestRateLimitOnPost(t *testing.T) {
	s, _ := newTestServer(t)

	form := url.Values{
		"occupation": {"plumber"},
		"amount":     {"100"},
		"date":       {today()},
		"type":       {"wages"},
	}
	var last int
	for i := 0; i < 61; i++ {
		last = postForm(s, "/income", form).Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", last)
	}
}
