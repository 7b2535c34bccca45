package http

import (
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "method", r.Method, "url", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Malformed request</div>`))
		return
	}

	occupation := sanitizeInput(r.Form.Get("occupation"))
	amount := strings.TrimSpace(r.Form.Get("amount"))
	date := strings.TrimSpace(r.Form.Get("date"))
	typ := strings.TrimSpace(r.Form.Get("type"))

	entry, err := s.svc.CreateIncome(r.Context(), occupation, amount, date, typ)
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Invalid income: ` + template.HTMLEscapeString(err.Error()) + `</div>`))
		return
	}

	s.invalidateOverview()
	w.Header().Set("HX-Trigger", "ledger:changed")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Income recorded: ` +
		template.HTMLEscapeString(entry.Occupation) + `</div>`))
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
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

	occupation := sanitizeInput(r.Form.Get("occupation"))
	amount := strings.TrimSpace(r.Form.Get("amount"))
	date := strings.TrimSpace(r.Form.Get("date"))
	typ := strings.TrimSpace(r.Form.Get("type"))

	entry, found, err := s.svc.UpdateIncome(r.Context(), id, occupation, amount, date, typ)
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Invalid income: ` + template.HTMLEscapeString(err.Error()) + `</div>`))
		return
	}
	if !found {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`<div class="error">Income entry not found</div>`))
		return
	}

	s.invalidateOverview()
	w.Header().Set("HX-Trigger", "ledger:changed")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Income updated: ` +
		template.HTMLEscapeString(entry.Occupation) + `</div>`))
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	removed, err := s.svc.DeleteIncome(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "Income delete error", "error", err, "id", id)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div class="error">Failed to delete income</div>`))
		return
	}
	if !removed {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`<div class="error">Income entry not found</div>`))
		return
	}

	s.invalidateOverview()
	w.Header().Set("HX-Trigger", "ledger:changed")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Income deleted</div>`))
}

// pathID parses the {id} path segment.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Invalid entry id</div>`))
		return 0, false
	}
	return id, true
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
