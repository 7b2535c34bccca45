package http

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"tally/internal/core"
	"tally/internal/currency"
	"tally/internal/services"
)

type incomeRow struct {
	ID         int64
	Date       string
	Occupation string
	Amount     string
	Type       string
}

type expenseRow struct {
	ID       int64
	Date     string
	Item     string
	Price    string
	Quantity int64
	Total    string
}

type summaryView struct {
	Total           string
	Yearly          string
	Monthly         string
	Weekly          string
	Daily           string
	ShowWeeklyDaily bool
}

type overviewView struct {
	Location    string
	Currency    string
	Incomes     []incomeRow
	Expenses    []expenseRow
	Income      summaryView
	Expense     summaryView
	Net         string
	NetNegative bool
}

// formatterFor picks the money renderer for the session currency. An
// unresolved or unsupported code degrades to plain numeric formatting.
func formatterFor(r *http.Request, code string) func(core.Money) string {
	if strings.TrimSpace(code) == "" {
		return currency.FormatRaw
	}
	f, err := currency.NewFormatter(code)
	if err != nil {
		slog.WarnContext(r.Context(), "Unsupported session currency, using plain formatting", "currency", code)
		return currency.FormatRaw
	}
	return f.Format
}

func buildOverviewView(r *http.Request, ov services.Overview) overviewView {
	format := formatterFor(r, ov.Currency)

	view := overviewView{
		Location:    ov.Location,
		Currency:    ov.Currency,
		Net:         format(ov.Net),
		NetNegative: ov.Net.Cents < 0,
		Income: summaryView{
			Total:           format(ov.Income.Total),
			Yearly:          format(ov.Income.Yearly),
			Monthly:         format(ov.Income.Monthly),
			Weekly:          format(ov.Income.Weekly),
			Daily:           format(ov.Income.Daily),
			ShowWeeklyDaily: ov.Income.WeeklyDailyApplicable,
		},
		Expense: summaryView{
			Total:           format(ov.Expense.Total),
			Yearly:          format(ov.Expense.Yearly),
			Monthly:         format(ov.Expense.Monthly),
			Weekly:          format(ov.Expense.Weekly),
			Daily:           format(ov.Expense.Daily),
			ShowWeeklyDaily: true,
		},
	}
	for _, e := range ov.Incomes {
		view.Incomes = append(view.Incomes, incomeRow{
			ID:         e.ID,
			Date:       e.Date.String(),
			Occupation: e.Occupation,
			Amount:     format(e.Amount),
			Type:       string(e.Type),
		})
	}
	for _, e := range ov.Expenses {
		view.Expenses = append(view.Expenses, expenseRow{
			ID:       e.ID,
			Date:     e.Date.String(),
			Item:     e.Item,
			Price:    format(e.Price),
			Quantity: e.Quantity,
			Total:    format(e.Total),
		})
	}
	return view
}

// renderOverviewFragment renders the overview partial, using the cached
// copy when present.
func (s *Server) renderOverviewFragment(r *http.Request) (string, error) {
	// Keyed by day and currency so a locale change is picked up on the
	// next render instead of after the TTL.
	key := "overview:" + core.Today().String() + ":" + s.svc.SessionCurrency()
	if html, found := s.overviewCache.Get(key); found {
		slog.DebugContext(r.Context(), "Overview cache hit")
		return html, nil
	}

	ov, err := s.svc.Overview(core.Today())
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "overview.html", buildOverviewView(r, ov)); err != nil {
		return "", err
	}
	html := buf.String()
	s.overviewCache.Set(key, html)
	return html, nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	fragment, err := s.renderOverviewFragment(r)
	if err != nil {
		slog.ErrorContext(r.Context(), "Overview render failed", "error", err)
		http.Error(w, "failed to build overview", http.StatusInternalServerError)
		return
	}

	data := struct {
		Today    string
		Overview template.HTML
	}{
		Today:    core.Today().String(),
		Overview: template.HTML(fragment),
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleOverview renders the overview partial for htmx refreshes.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	fragment, err := s.renderOverviewFragment(r)
	if err != nil {
		slog.ErrorContext(r.Context(), "Overview render failed", "error", err)
		_, _ = w.Write([]byte(`<section id="overview"><div class="placeholder">Failed to load overview</div></section>`))
		return
	}
	_, _ = w.Write([]byte(fragment))
}
