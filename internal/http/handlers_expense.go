package http

import (
	"html/template"
	"log/slog"
	"net/http"
	"strings"
)

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "method", r.Method, "url", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Malformed request</div>`))
		return
	}

	item := sanitizeInput(r.Form.Get("item"))
	price := strings.TrimSpace(r.Form.Get("price"))
	quantity := strings.TrimSpace(r.Form.Get("quantity"))
	date := strings.TrimSpace(r.Form.Get("date"))

	entry, err := s.svc.CreateExpense(r.Context(), item, price, quantity, date)
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Invalid expense: ` + template.HTMLEscapeString(err.Error()) + `</div>`))
		return
	}

	s.invalidateOverview()
	w.Header().Set("HX-Trigger", "ledger:changed")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Expense recorded: ` +
		template.HTMLEscapeString(entry.Item) + `</div>`))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "method", r.Method, "url", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Malformed request</div>`))
		return
	}

	item := sanitizeInput(r.Form.Get("item"))
	price := strings.TrimSpace(r.Form.Get("price"))
	quantity := strings.TrimSpace(r.Form.Get("quantity"))
	date := strings.TrimSpace(r.Form.Get("date"))

	entry, found, err := s.svc.UpdateExpense(r.Context(), id, item, price, quantity, date)
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Invalid expense: ` + template.HTMLEscapeString(err.Error()) + `</div>`))
		return
	}
	if !found {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`<div class="error">Expense entry not found</div>`))
		return
	}

	s.invalidateOverview()
	w.Header().Set("HX-Trigger", "ledger:changed")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Expense updated: ` +
		template.HTMLEscapeString(entry.Item) + `</div>`))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	removed, err := s.svc.DeleteExpense(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "Expense delete error", "error", err, "id", id)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div class="error">Failed to delete expense</div>`))
		return
	}
	if !removed {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`<div class="error">Expense entry not found</div>`))
		return
	}

	s.invalidateOverview()
	w.Header().Set("HX-Trigger", "ledger:changed")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Expense deleted</div>`))
}
