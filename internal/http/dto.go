package http

import (
	"encoding/json"
	"time"

	"cashflow/internal/core"
	"cashflow/internal/finance"
	"cashflow/internal/services"
)

// ---- requests ----

type transactionRequest struct {
	Kind        string      `json:"kind"`
	Date        string      `json:"date"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	Category    string      `json:"category"`
}

func (req transactionRequest) toTransaction() (core.Transaction, error) {
	kind, err := parseKind(req.Kind)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := parseDateField("date", req.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		Kind:        kind,
		Date:        date,
		Description: sanitizeInput(req.Description),
		Amount:      amount,
		Category:    sanitizeInput(req.Category),
	}, nil
}

type seriesRequest struct {
	Kind        string      `json:"kind"`
	Anchor      string      `json:"anchor"`
	EndDate     string      `json:"end_date,omitempty"`
	Pattern     string      `json:"pattern"`
	TargetDay   int         `json:"target_day,omitempty"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	Category    string      `json:"category"`
}

func (req seriesRequest) toSeries() (core.RecurringSeries, error) {
	kind, err := parseKind(req.Kind)
	if err != nil {
		return core.RecurringSeries{}, err
	}
	pattern, err := parsePattern(req.Pattern)
	if err != nil {
		return core.RecurringSeries{}, err
	}
	anchor, err := parseDateField("anchor", req.Anchor)
	if err != nil {
		return core.RecurringSeries{}, err
	}
	end, err := parseOptionalDate("end_date", req.EndDate)
	if err != nil {
		return core.RecurringSeries{}, err
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return core.RecurringSeries{}, err
	}
	return core.RecurringSeries{
		Kind:        kind,
		Anchor:      anchor,
		EndDate:     end,
		Pattern:     pattern,
		TargetDay:   req.TargetDay,
		Description: sanitizeInput(req.Description),
		Amount:      amount,
		Category:    sanitizeInput(req.Category),
	}, nil
}

type materializeRequest struct {
	Until string `json:"until,omitempty"`
}

type cardRequest struct {
	Name       string `json:"name"`
	ClosingDay int    `json:"closing_day"`
	DueDay     int    `json:"due_day"`
}

type purchaseRequest struct {
	CardID       string      `json:"card_id"`
	Date         string      `json:"date"`
	Description  string      `json:"description"`
	Amount       json.Number `json:"amount"`
	Installments int         `json:"installments"`
	Category     string      `json:"category"`
}

func (req purchaseRequest) toPurchase() (core.Purchase, error) {
	date, err := parseDateField("date", req.Date)
	if err != nil {
		return core.Purchase{}, err
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return core.Purchase{}, err
	}
	return core.Purchase{
		CardID:       sanitizeInput(req.CardID),
		Date:         date,
		Description:  sanitizeInput(req.Description),
		Amount:       amount,
		Installments: req.Installments,
		Category:     sanitizeInput(req.Category),
	}, nil
}

type previewRequest struct {
	PurchaseDate string      `json:"purchase_date"`
	Amount       json.Number `json:"amount"`
	Installments int         `json:"installments"`
	ClosingDay   int         `json:"closing_day"`
	DueDay       int         `json:"due_day"`
}

// ---- responses ----

type transactionResponse struct {
	ID            string    `json:"id"`
	Kind          core.Kind `json:"kind"`
	Date          string    `json:"date"`
	Description   string    `json:"description"`
	Amount        string    `json:"amount"`
	AmountCents   int64     `json:"amount_cents"`
	NetCents      int64     `json:"net_cents"`
	Category      string    `json:"category"`
	SeriesID      string    `json:"series_id,omitempty"`
	InstallmentID string    `json:"installment_id,omitempty"`
	CardID        string    `json:"card_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:            t.ID,
		Kind:          t.Kind,
		Date:          t.Date.String(),
		Description:   t.Description,
		Amount:        t.Amount.Decimal().StringFixed(2),
		AmountCents:   t.Amount.Cents,
		NetCents:      t.Net(),
		Category:      t.Category,
		SeriesID:      t.SeriesID,
		InstallmentID: t.InstallmentID,
		CardID:        t.CardID,
		CreatedAt:     t.CreatedAt,
	}
}

func toTransactionResponses(txs []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionResponse(t))
	}
	return out
}

type seriesResponse struct {
	ID            string       `json:"id"`
	Kind          core.Kind    `json:"kind"`
	Anchor        string       `json:"anchor"`
	EndDate       string       `json:"end_date,omitempty"`
	Pattern       core.Pattern `json:"pattern"`
	TargetDay     int          `json:"target_day,omitempty"`
	Description   string       `json:"description"`
	Amount        string       `json:"amount"`
	AmountCents   int64        `json:"amount_cents"`
	Category      string       `json:"category"`
	LastGenerated string       `json:"last_generated,omitempty"`
	Active        bool         `json:"active"`
}

func toSeriesResponse(rs core.RecurringSeries) seriesResponse {
	return seriesResponse{
		ID:            rs.ID,
		Kind:          rs.Kind,
		Anchor:        rs.Anchor.String(),
		EndDate:       rs.EndDate.String(),
		Pattern:       rs.Pattern,
		TargetDay:     rs.TargetDay,
		Description:   rs.Description,
		Amount:        rs.Amount.Decimal().StringFixed(2),
		AmountCents:   rs.Amount.Cents,
		Category:      rs.Category,
		LastGenerated: rs.LastGenerated.String(),
		Active:        rs.Active,
	}
}

type seriesCreatedResponse struct {
	Series       seriesResponse        `json:"series"`
	Transactions []transactionResponse `json:"transactions"`
}

type materializeResponse struct {
	SeriesID     string                `json:"series_id"`
	Created      int                   `json:"created"`
	Transactions []transactionResponse `json:"transactions"`
}

type cardResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ClosingDay int    `json:"closing_day"`
	DueDay     int    `json:"due_day"`
}

func toCardResponse(c core.Card) cardResponse {
	return cardResponse{ID: c.ID, Name: c.Name, ClosingDay: c.ClosingDay, DueDay: c.DueDay}
}

type installmentResponse struct {
	Index          int    `json:"index"`
	ID             string `json:"id"`
	Amount         string `json:"amount"`
	AmountCents    int64  `json:"amount_cents"`
	StatementMonth int    `json:"statement_month"`
	StatementYear  int    `json:"statement_year"`
	DueDate        string `json:"due_date"`
}

func toInstallmentResponses(in []finance.Installment) []installmentResponse {
	out := make([]installmentResponse, 0, len(in))
	for _, inst := range in {
		out = append(out, installmentResponse{
			Index:          inst.Index,
			ID:             inst.ID,
			Amount:         inst.Amount.Decimal().StringFixed(2),
			AmountCents:    inst.Amount.Cents,
			StatementMonth: int(inst.StatementMonth),
			StatementYear:  inst.StatementYear,
			DueDate:        inst.DueDate.String(),
		})
	}
	return out
}

type purchaseResponse struct {
	PurchaseID   string                `json:"purchase_id"`
	Card         cardResponse          `json:"card"`
	Installments []installmentResponse `json:"installments"`
	Transactions []transactionResponse `json:"transactions"`
}

type projectionResponse struct {
	Value       float64 `json:"value"`
	Explanation string  `json:"explanation"`
}

type categoryResponse struct {
	Name     string `json:"name"`
	NetCents int64  `json:"net_cents"`
}

type dashboardResponse struct {
	Today string `json:"today"`
	Month struct {
		Year          int                `json:"year"`
		Month         int                `json:"month"`
		IncomeCents   int64              `json:"income_cents"`
		ExpensesCents int64              `json:"expenses_cents"`
		NetCents      int64              `json:"net_cents"`
		ByCategory    []categoryResponse `json:"by_category"`
	} `json:"month"`
	MonthEnd struct {
		projectionResponse
		PastNet            float64 `json:"past_net"`
		FutureScheduledNet float64 `json:"future_scheduled_net"`
		DiscretionaryNet   float64 `json:"discretionary_net"`
		RemainingDays      int     `json:"remaining_days"`
		WindowDays         int     `json:"window_days"`
	} `json:"month_end_projection"`
	YearEnd struct {
		projectionResponse
		MonthsRemaining int       `json:"months_remaining"`
		History         []float64 `json:"historical_monthly_nets"`
	} `json:"year_end_projection"`
}

func toDashboardResponse(d services.Dashboard) dashboardResponse {
	var resp dashboardResponse
	resp.Today = d.Today.String()

	resp.Month.Year = d.Overview.Year
	resp.Month.Month = d.Overview.Month
	resp.Month.IncomeCents = d.Overview.Income.Cents
	resp.Month.ExpensesCents = d.Overview.Expenses.Cents
	resp.Month.NetCents = d.Overview.Net()
	resp.Month.ByCategory = make([]categoryResponse, 0, len(d.Overview.ByCategory))
	for _, c := range d.Overview.ByCategory {
		resp.Month.ByCategory = append(resp.Month.ByCategory, categoryResponse{Name: c.Name, NetCents: c.Amount.Cents})
	}

	resp.MonthEnd.projectionResponse = projectionResponse{Value: d.Month.Value, Explanation: d.Month.Explanation}
	resp.MonthEnd.PastNet = d.Month.Input.PastNet
	resp.MonthEnd.FutureScheduledNet = d.Month.Input.FutureScheduledNet
	resp.MonthEnd.DiscretionaryNet = d.Month.Input.LastNDaysDiscretionaryNet
	resp.MonthEnd.RemainingDays = d.Month.Input.RemainingDays
	resp.MonthEnd.WindowDays = d.Month.Input.WindowDays

	resp.YearEnd.projectionResponse = projectionResponse{Value: d.Year.Value, Explanation: d.Year.Explanation}
	resp.YearEnd.MonthsRemaining = d.Year.Input.MonthsRemaining
	resp.YearEnd.History = d.Year.Input.HistoricalMonthlyNets
	if resp.YearEnd.History == nil {
		resp.YearEnd.History = []float64{}
	}
	return resp
}
