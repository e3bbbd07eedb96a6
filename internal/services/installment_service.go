package services

import (
	"context"
	"fmt"
	"strings"

	"cashflow/internal/core"
	"cashflow/internal/finance"
	applog "cashflow/internal/log"
	"cashflow/internal/metrics"

	"github.com/google/uuid"
)

// purchaseNamespace scopes deterministic purchase IDs.
var purchaseNamespace = uuid.MustParse("8f14e45f-ceea-467f-a0e6-5b6f1c2f3d4a")

// PurchaseResult is a stored card purchase: its schedule and the rows written for it.
type PurchaseResult struct {
	PurchaseID   string
	Card         core.Card
	Installments []finance.Installment
	Transactions []core.Transaction
}

// InstallmentService manages cards and splits card purchases into installments.
type InstallmentService struct {
	cards        CardStore
	transactions *TransactionService
	store        TransactionStore
	logger       *applog.Logger
	metrics      *metrics.Metrics
}

func NewInstallmentService(cards CardStore, store TransactionStore, transactions *TransactionService, logger *applog.Logger) *InstallmentService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &InstallmentService{
		cards:        cards,
		store:        store,
		transactions: transactions,
		logger:       logger.WithComponent(applog.ComponentBilling),
		metrics:      metrics.Default(),
	}
}

func (s *InstallmentService) CreateCard(ctx context.Context, c core.Card) (core.Card, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return core.Card{}, fmt.Errorf("validate card: %w", err)
	}
	created, err := s.cards.CreateCard(ctx, c)
	if err != nil {
		return core.Card{}, fmt.Errorf("save card: %w", err)
	}
	s.logger.InfoContext(ctx, "Card created",
		applog.FieldCardID, created.ID,
		"closing_day", created.ClosingDay,
		"due_day", created.DueDay)
	return created, nil
}

func (s *InstallmentService) ListCards(ctx context.Context) ([]core.Card, error) {
	return s.cards.ListCards(ctx)
}

// Preview computes the installment schedule of a purchase on card without storing anything.
func (s *InstallmentService) Preview(date core.Date, amount core.Money, installments int, card core.Card) ([]finance.Installment, error) {
	return finance.GenerateInstallmentsCents(date, amount, installments, card.ClosingDay, card.DueDay)
}

// PurchaseID derives a stable identifier so resubmitting the same purchase is a no-op.
func PurchaseID(p core.Purchase) string {
	key := fmt.Sprintf("%s|%s|%s|%d|%d", p.CardID, p.Date.String(), strings.TrimSpace(p.Description), p.Amount.Cents, p.Installments)
	return uuid.NewSHA1(purchaseNamespace, []byte(key)).String()
}

// CreatePurchase stores one expense per installment, dated on the installment's due date.
func (s *InstallmentService) CreatePurchase(ctx context.Context, p core.Purchase) (PurchaseResult, error) {
	if err := p.Validate(); err != nil {
		return PurchaseResult{}, fmt.Errorf("validate purchase: %w", err)
	}

	card, err := s.cards.GetCard(ctx, p.CardID)
	if err != nil {
		return PurchaseResult{}, fmt.Errorf("get card %s: %w", p.CardID, err)
	}

	installments, err := finance.GenerateInstallmentsCents(p.Date, p.Amount, p.Installments, card.ClosingDay, card.DueDay)
	if err != nil {
		return PurchaseResult{}, fmt.Errorf("generate installments: %w", err)
	}

	purchaseID := PurchaseID(p)
	description := strings.TrimSpace(p.Description)
	txs := make([]core.Transaction, 0, len(installments))
	for _, inst := range installments {
		txs = append(txs, core.Transaction{
			Kind:          core.Expense,
			Date:          inst.DueDate,
			Description:   fmt.Sprintf("%s (%d/%d)", description, inst.Index, len(installments)),
			Amount:        inst.Amount,
			Category:      p.Category,
			InstallmentID: purchaseID + "/" + inst.ID,
			CardID:        card.ID,
		})
	}

	stored, err := s.store.InsertTransactions(ctx, txs)
	if err != nil {
		return PurchaseResult{}, fmt.Errorf("save installments: %w", err)
	}

	s.metrics.InstallmentsCreatedTotal.Add(float64(len(stored)))
	if s.transactions != nil {
		s.transactions.afterWrite(ctx, SourceInstallment, stored)
	}

	s.logger.InfoContext(ctx, "Card purchase stored",
		applog.FieldCardID, card.ID,
		"purchase_id", purchaseID,
		"installments", len(installments),
		applog.FieldCount, len(stored))

	return PurchaseResult{
		PurchaseID:   purchaseID,
		Card:         card,
		Installments: installments,
		Transactions: stored,
	}, nil
}
