package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cashflow/internal/core"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const timestampLayout = time.RFC3339Nano

// NetScope selects which transactions an aggregate covers.
type NetScope int

const (
	ScopeAll NetScope = iota
	// ScopeScheduled covers series occurrences and installments.
	ScopeScheduled
	// ScopeDiscretionary covers manually entered transactions.
	ScopeDiscretionary
)

// TransactionFilter narrows ListTransactions. Zero fields are ignored.
type TransactionFilter struct {
	From     core.Date
	To       core.Date
	Kind     core.Kind
	SeriesID string
	CardID   string
	Limit    int
}

// PendingSync is the minimal data a sync message carries.
type PendingSync struct {
	ID        string
	Version   int64
	CreatedAt time.Time
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type scanner interface {
	Scan(dest ...any) error
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullDate(d core.Date) sql.NullString {
	return nullString(d.String())
}

func parseNullDate(ns sql.NullString) (core.Date, error) {
	if !ns.Valid || ns.String == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(ns.String)
}

// ---- transactions ----

const transactionColumns = `id, kind, date, description, amount_cents, category, series_id, installment_id, card_id, created_at`

const insertTransactionSQL = `INSERT INTO transactions (` + transactionColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT DO NOTHING`

func prepareTransaction(t *core.Transaction) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
}

func insertTransaction(ctx context.Context, ex execer, t core.Transaction) (bool, error) {
	res, err := ex.ExecContext(ctx, insertTransactionSQL,
		t.ID, string(t.Kind), t.Date.String(), t.Description, t.Amount.Cents, t.Category,
		nullString(t.SeriesID), nullString(t.InstallmentID), nullString(t.CardID),
		t.CreatedAt.UTC().Format(timestampLayout))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateTransaction stores t and reports whether a new row was written.
// A duplicate (series, date) or installment id is skipped without error.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, bool, error) {
	prepareTransaction(&t)
	inserted, err := insertTransaction(ctx, r.db, t)
	if err != nil {
		return core.Transaction{}, false, fmt.Errorf("create transaction: %w", err)
	}
	return t, inserted, nil
}

// InsertTransactions writes txs in one database transaction and returns the stored rows.
// Rows that collide with an existing occurrence are left out of the result.
func (r *SQLiteRepository) InsertTransactions(ctx context.Context, txs []core.Transaction) ([]core.Transaction, error) {
	var stored []core.Transaction
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		stored, err = insertAll(ctx, tx, txs)
		return err
	})
	return stored, err
}

func insertAll(ctx context.Context, tx *sql.Tx, txs []core.Transaction) ([]core.Transaction, error) {
	stored := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		prepareTransaction(&t)
		inserted, err := insertTransaction(ctx, tx, t)
		if err != nil {
			return nil, fmt.Errorf("insert transaction %s: %w", t.Date, err)
		}
		if inserted {
			stored = append(stored, t)
		}
	}
	return stored, nil
}

func scanTransaction(s scanner) (core.Transaction, error) {
	var (
		t                        core.Transaction
		kind, date, createdAt    string
		seriesID, instID, cardID sql.NullString
	)
	if err := s.Scan(&t.ID, &kind, &date, &t.Description, &t.Amount.Cents, &t.Category,
		&seriesID, &instID, &cardID, &createdAt); err != nil {
		return core.Transaction{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	t.Kind = core.Kind(kind)
	t.Date = d
	t.SeriesID = seriesID.String
	t.InstallmentID = instID.String
	t.CardID = cardID.String
	if ts, err := time.Parse(timestampLayout, createdAt); err == nil {
		t.CreatedAt = ts
	}
	return t, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error) {
	var (
		where []string
		args  []any
	)
	if !f.From.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, f.From.String())
	}
	if !f.To.IsZero() {
		where = append(where, "date <= ?")
		args = append(args, f.To.String())
	}
	if f.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(f.Kind))
	}
	if f.SeriesID != "" {
		where = append(where, "series_id = ?")
		args = append(args, f.SeriesID)
	}
	if f.CardID != "" {
		where = append(where, "card_id = ?")
		args = append(args, f.CardID)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date ASC, created_at ASC"
	if f.Limit > 0 {
		query += " LIMIT " + strconv.Itoa(f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// ---- aggregates ----

const scheduledPredicate = `(series_id IS NOT NULL OR installment_id IS NOT NULL)`

const netExpr = `COALESCE(SUM(CASE WHEN kind = 'income' THEN amount_cents ELSE -amount_cents END), 0)`

// SumNet returns income minus expenses, in cents, for dates in [from, to].
func (r *SQLiteRepository) SumNet(ctx context.Context, from, to core.Date, scope NetScope) (int64, error) {
	query := `SELECT ` + netExpr + ` FROM transactions WHERE date >= ? AND date <= ?`
	switch scope {
	case ScopeScheduled:
		query += ` AND ` + scheduledPredicate
	case ScopeDiscretionary:
		query += ` AND NOT ` + scheduledPredicate
	}

	var net int64
	if err := r.db.QueryRowContext(ctx, query, from.String(), to.String()).Scan(&net); err != nil {
		return 0, fmt.Errorf("sum net: %w", err)
	}
	return net, nil
}

// MonthlyNets returns the net per month of year for months that have transactions.
func (r *SQLiteRepository) MonthlyNets(ctx context.Context, year int) (map[time.Month]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT CAST(substr(date, 6, 2) AS INTEGER) AS month, `+netExpr+`
FROM transactions
WHERE substr(date, 1, 4) = ?
GROUP BY month
ORDER BY month`, fmt.Sprintf("%04d", year))
	if err != nil {
		return nil, fmt.Errorf("monthly nets: %w", err)
	}
	defer rows.Close()

	nets := make(map[time.Month]int64)
	for rows.Next() {
		var (
			month int
			net   int64
		)
		if err := rows.Scan(&month, &net); err != nil {
			return nil, fmt.Errorf("scan monthly net: %w", err)
		}
		nets[time.Month(month)] = net
	}
	return nets, rows.Err()
}

// EarliestTransactionDate returns the oldest transaction date, or false when there are none.
func (r *SQLiteRepository) EarliestTransactionDate(ctx context.Context) (core.Date, bool, error) {
	var ns sql.NullString
	if err := r.db.QueryRowContext(ctx, `SELECT MIN(date) FROM transactions`).Scan(&ns); err != nil {
		return core.Date{}, false, fmt.Errorf("earliest transaction: %w", err)
	}
	if !ns.Valid {
		return core.Date{}, false, nil
	}
	d, err := core.ParseDate(ns.String)
	if err != nil {
		return core.Date{}, false, fmt.Errorf("parse earliest date: %w", err)
	}
	return d, true, nil
}

// ReadMonthOverview totals income, expenses and per-category net for one month.
func (r *SQLiteRepository) ReadMonthOverview(ctx context.Context, year int, month time.Month) (core.MonthOverview, error) {
	overview := core.MonthOverview{Year: year, Month: int(month)}
	from := core.NewDate(year, month, 1)
	to := core.EndOfMonth(from)

	err := r.db.QueryRowContext(ctx, `SELECT
  COALESCE(SUM(CASE WHEN kind = 'income' THEN amount_cents END), 0),
  COALESCE(SUM(CASE WHEN kind = 'expense' THEN amount_cents END), 0)
FROM transactions WHERE date >= ? AND date <= ?`, from.String(), to.String()).
		Scan(&overview.Income.Cents, &overview.Expenses.Cents)
	if err != nil {
		return overview, fmt.Errorf("month totals: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT category, `+netExpr+` AS net
FROM transactions WHERE date >= ? AND date <= ?
GROUP BY category
ORDER BY net ASC, category ASC`, from.String(), to.String())
	if err != nil {
		return overview, fmt.Errorf("category sums: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ca core.CategoryAmount
		if err := rows.Scan(&ca.Name, &ca.Amount.Cents); err != nil {
			return overview, fmt.Errorf("scan category sum: %w", err)
		}
		overview.ByCategory = append(overview.ByCategory, ca)
	}
	return overview, rows.Err()
}

// ---- sync state ----

// GetPendingSync returns transactions not yet exported, oldest first.
func (r *SQLiteRepository) GetPendingSync(ctx context.Context, limit int) ([]PendingSync, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, version, created_at FROM transactions
WHERE sync_status = 'pending'
ORDER BY created_at ASC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync: %w", err)
	}
	defer rows.Close()

	var out []PendingSync
	for rows.Next() {
		var (
			p         PendingSync
			createdAt string
		)
		if err := rows.Scan(&p.ID, &p.Version, &createdAt); err != nil {
			return nil, fmt.Errorf("scan pending sync: %w", err)
		}
		p.CreatedAt, _ = time.Parse(timestampLayout, createdAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) setSyncStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE transactions
SET sync_status = ?, synced_at = ?, version = version + 1
WHERE id = ?`, status, time.Now().UTC().Format(timestampLayout), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	if err := r.setSyncStatus(ctx, id, "synced"); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string) error {
	if err := r.setSyncStatus(ctx, id, "error"); err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	return nil
}

// ---- recurring series ----

const seriesColumns = `id, kind, anchor_date, end_date, pattern, target_day, description, amount_cents, category, last_generated, active`

func (r *SQLiteRepository) CreateSeries(ctx context.Context, rs core.RecurringSeries) (core.RecurringSeries, error) {
	if rs.ID == "" {
		rs.ID = uuid.NewString()
	}
	now := time.Now().UTC().Format(timestampLayout)
	_, err := r.db.ExecContext(ctx, `INSERT INTO recurring_series (`+seriesColumns+`, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rs.ID, string(rs.Kind), rs.Anchor.String(), nullDate(rs.EndDate), string(rs.Pattern), rs.TargetDay,
		rs.Description, rs.Amount.Cents, rs.Category, nullDate(rs.LastGenerated), rs.Active, now, now)
	if err != nil {
		return core.RecurringSeries{}, fmt.Errorf("create series: %w", err)
	}
	return rs, nil
}

func scanSeries(s scanner) (core.RecurringSeries, error) {
	var (
		rs                core.RecurringSeries
		kind, anchor, pat string
		endDate, lastGen  sql.NullString
		active            bool
	)
	if err := s.Scan(&rs.ID, &kind, &anchor, &endDate, &pat, &rs.TargetDay,
		&rs.Description, &rs.Amount.Cents, &rs.Category, &lastGen, &active); err != nil {
		return core.RecurringSeries{}, err
	}
	var err error
	if rs.Anchor, err = core.ParseDate(anchor); err != nil {
		return core.RecurringSeries{}, fmt.Errorf("parse anchor %q: %w", anchor, err)
	}
	if rs.EndDate, err = parseNullDate(endDate); err != nil {
		return core.RecurringSeries{}, fmt.Errorf("parse end date: %w", err)
	}
	if rs.LastGenerated, err = parseNullDate(lastGen); err != nil {
		return core.RecurringSeries{}, fmt.Errorf("parse last generated: %w", err)
	}
	rs.Kind = core.Kind(kind)
	rs.Pattern = core.ParsePattern(pat)
	rs.Active = active
	return rs, nil
}

func (r *SQLiteRepository) GetSeries(ctx context.Context, id string) (core.RecurringSeries, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+seriesColumns+` FROM recurring_series WHERE id = ?`, id)
	rs, err := scanSeries(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurringSeries{}, core.ErrNotFound
	}
	if err != nil {
		return core.RecurringSeries{}, fmt.Errorf("get series: %w", err)
	}
	return rs, nil
}

func (r *SQLiteRepository) ListSeries(ctx context.Context, activeOnly bool) ([]core.RecurringSeries, error) {
	query := `SELECT ` + seriesColumns + ` FROM recurring_series`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY anchor_date ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringSeries
	for rows.Next() {
		rs, err := scanSeries(rows)
		if err != nil {
			return nil, fmt.Errorf("scan series: %w", err)
		}
		out = append(out, rs)
	}
	return out, rows.Err()
}

// SaveOccurrences inserts materialized occurrences and advances the series' high-water mark
// atomically. It returns the rows that were actually written.
func (r *SQLiteRepository) SaveOccurrences(ctx context.Context, seriesID string, txs []core.Transaction, lastGenerated core.Date) ([]core.Transaction, error) {
	var stored []core.Transaction
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if stored, err = insertAll(ctx, tx, txs); err != nil {
			return err
		}
		if lastGenerated.IsZero() {
			return nil
		}
		_, err = tx.ExecContext(ctx, `UPDATE recurring_series
SET last_generated = ?, updated_at = ?
WHERE id = ? AND (last_generated IS NULL OR last_generated < ?)`,
			lastGenerated.String(), time.Now().UTC().Format(timestampLayout), seriesID, lastGenerated.String())
		if err != nil {
			return fmt.Errorf("update last generated: %w", err)
		}
		return nil
	})
	return stored, err
}

// DeactivateSeries stops future materialization; already stored occurrences stay.
func (r *SQLiteRepository) DeactivateSeries(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE recurring_series SET active = 0, updated_at = ? WHERE id = ?`,
		time.Now().UTC().Format(timestampLayout), id)
	if err != nil {
		return fmt.Errorf("deactivate series: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// ---- cards ----

func (r *SQLiteRepository) CreateCard(ctx context.Context, c core.Card) (core.Card, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO cards (id, name, closing_day, due_day, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.ClosingDay, c.DueDay, time.Now().UTC().Format(timestampLayout))
	if isUniqueViolation(err) {
		return core.Card{}, fmt.Errorf("card %q: %w", c.Name, core.ErrConflict)
	}
	if err != nil {
		return core.Card{}, fmt.Errorf("create card: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) GetCard(ctx context.Context, id string) (core.Card, error) {
	var c core.Card
	err := r.db.QueryRowContext(ctx, `SELECT id, name, closing_day, due_day FROM cards WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.ClosingDay, &c.DueDay)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Card{}, core.ErrNotFound
	}
	if err != nil {
		return core.Card{}, fmt.Errorf("get card: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListCards(ctx context.Context) ([]core.Card, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, closing_day, due_day FROM cards ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var out []core.Card
	for rows.Next() {
		var c core.Card
		if err := rows.Scan(&c.ID, &c.Name, &c.ClosingDay, &c.DueDay); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// isUniqueViolation matches on the message; the driver's error codes are not part of its stable API.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
