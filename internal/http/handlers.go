package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cashflow/internal/core"
	applog "cashflow/internal/log"
	"cashflow/internal/storage"
)

// ---- health ----

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":              "ok",
		"timestamp":           s.now().Format(time.RFC3339),
		"uptime":              s.now().Sub(s.started).Round(time.Second).String(),
		"tracked_clients":     s.limiter.ActiveClients(),
		"suspicious_requests": s.detector.SuspiciousRequests(),
	})
}

// handleReady pings every registered dependency.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := make(map[string]string, len(s.deps.Checks))
	for name, p := range s.deps.Checks {
		if err := p.Ping(ctx); err != nil {
			checks[name] = "failed: " + err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	writeJSON(w, code, map[string]any{"status": status, "checks": checks})
}

// ---- transactions ----

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	t, err := req.toTransaction()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	created, err := s.deps.Transactions.Create(r.Context(), t)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		f   storage.TransactionFilter
		err error
	)
	if f.From, err = parseOptionalDate("from", q.Get("from")); err != nil {
		s.fail(w, r, err)
		return
	}
	if f.To, err = parseOptionalDate("to", q.Get("to")); err != nil {
		s.fail(w, r, err)
		return
	}
	if v := q.Get("kind"); v != "" {
		if f.Kind, err = parseKind(v); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	if f.Limit, err = queryInt(r, "limit"); err != nil {
		s.fail(w, r, err)
		return
	}
	f.SeriesID = strings.TrimSpace(q.Get("series_id"))
	f.CardID = strings.TrimSpace(q.Get("card_id"))

	txs, err := s.deps.Transactions.List(r.Context(), f)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponses(txs))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.deps.Transactions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Transactions.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- recurring series ----

func (s *Server) handleCreateSeries(w http.ResponseWriter, r *http.Request) {
	var req seriesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	rs, err := req.toSeries()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	created, txs, err := s.deps.Recurring.CreateSeries(r.Context(), rs)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, seriesCreatedResponse{
		Series:       toSeriesResponse(created),
		Transactions: toTransactionResponses(txs),
	})
}

func (s *Server) handleListSeries(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	list, err := s.deps.Recurring.List(r.Context(), activeOnly)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]seriesResponse, 0, len(list))
	for _, rs := range list {
		out = append(out, toSeriesResponse(rs))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetSeries(w http.ResponseWriter, r *http.Request) {
	rs, err := s.deps.Recurring.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSeriesResponse(rs))
}

func (s *Server) handleStopSeries(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Recurring.Stop(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMaterializeSeries accepts an optional body; without "until" it fills the current year.
func (s *Server) handleMaterializeSeries(w http.ResponseWriter, r *http.Request) {
	var req materializeRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	until, err := parseOptionalDate("until", req.Until)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if until.IsZero() {
		until = core.EndOfYear(core.DateOf(s.now()))
	}

	id := r.PathValue("id")
	txs, err := s.deps.Recurring.Materialize(r.Context(), id, until)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, materializeResponse{
		SeriesID:     id,
		Created:      len(txs),
		Transactions: toTransactionResponses(txs),
	})
}

// ---- cards and installments ----

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	card, err := s.deps.Installments.CreateCard(r.Context(), core.Card{
		Name:       sanitizeInput(req.Name),
		ClosingDay: req.ClosingDay,
		DueDay:     req.DueDay,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCardResponse(card))
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.deps.Installments.ListCards(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]cardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, toCardResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreatePurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := req.toPurchase()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	res, err := s.deps.Installments.CreatePurchase(r.Context(), p)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	// a resubmitted purchase writes nothing new
	status := http.StatusCreated
	if len(res.Transactions) == 0 {
		status = http.StatusOK
	}
	writeJSON(w, status, purchaseResponse{
		PurchaseID:   res.PurchaseID,
		Card:         toCardResponse(res.Card),
		Installments: toInstallmentResponses(res.Installments),
		Transactions: toTransactionResponses(res.Transactions),
	})
}

func (s *Server) handlePreviewInstallments(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	date, err := parseDateField("purchase_date", req.PurchaseDate)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	card := core.Card{Name: "preview", ClosingDay: req.ClosingDay, DueDay: req.DueDay}
	if err := card.Validate(); err != nil {
		s.fail(w, r, err)
		return
	}

	installments, err := s.deps.Installments.Preview(date, amount, req.Installments, card)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toInstallmentResponses(installments))
}

// ---- dashboard ----

// handleDashboard projects as of ?date=YYYY-MM-DD, defaulting to today.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	today := core.DateOf(s.now())
	if v := r.URL.Query().Get("date"); v != "" {
		d, err := parseDateField("date", v)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		today = d
	}

	d, err := s.deps.Dashboard.Dashboard(r.Context(), today)
	if err != nil {
		s.fail(w, r, fmt.Errorf("dashboard for %s: %w", today, err))
		return
	}

	applog.FromContext(r.Context()).DebugContext(r.Context(), "Dashboard served",
		applog.FieldDate, today.String())
	writeJSON(w, http.StatusOK, toDashboardResponse(d))
}
