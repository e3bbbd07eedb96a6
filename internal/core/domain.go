package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Weekly  Pattern = "weekly"
	Monthly Pattern = "monthly"
	Yearly  Pattern = "yearly"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

type (
	// Pattern is the repetition rule of a recurring series.
	Pattern string

	// Kind tells whether a transaction adds to or subtracts from the net flow.
	Kind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID            string
		Kind          Kind
		Date          Date
		Description   string
		Amount        Money
		Category      string
		SeriesID      string // set when materialized from a recurring series
		InstallmentID string // set when generated from a card purchase
		CardID        string
		CreatedAt     time.Time
	}

	RecurringSeries struct {
		ID            string
		Kind          Kind
		Anchor        Date
		EndDate       Date // zero means "until end of the anchor year"
		Pattern       Pattern
		TargetDay     int // 0 means "keep the previous occurrence's day"
		Description   string
		Amount        Money
		Category      string
		LastGenerated Date
		Active        bool
	}

	Card struct {
		ID         string
		Name       string
		ClosingDay int
		DueDay     int
	}

	Purchase struct {
		CardID       string
		Date         Date
		Description  string
		Amount       Money
		Installments int
		Category     string
	}
)

var (
	ErrInvalidDay          = errors.New("invalid day")
	ErrInvalidMonth        = errors.New("invalid month")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidKind         = errors.New("invalid transaction kind")
	ErrInvalidPattern      = errors.New("invalid repetition pattern")
	ErrEmptyDescription    = errors.New("empty description")
	ErrEmptyCategory       = errors.New("empty category")
	ErrInvalidClosingDay   = errors.New("closing day must be between 1 and 31")
	ErrInvalidDueDay       = errors.New("due day must be between 1 and 31")
	ErrInvalidInstallments = errors.New("installments must be at least 1")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("already exists")
	ErrZeroDate            = errors.New("date cannot be zero")
	ErrDescriptionTooLong  = errors.New("description too long (max 200 characters)")
	ErrEndBeforeAnchor     = errors.New("end date must be after anchor date")
	ErrEmptyCardName       = errors.New("empty card name")
	ErrEmptyCardID         = errors.New("empty card id")
)

const maxDescriptionLen = 200

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrZeroDate
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() time.Month {
	return d.Time.Month()
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// NewDate creates a new Date from year, month, day
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// IsEmpty returns true if the date is zero (for optional dates)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (k Kind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidKind
	}
}

// Sign returns +1 for income and -1 for expenses.
func (k Kind) Sign() int64 {
	if k == Income {
		return 1
	}
	return -1
}

// ParsePattern maps a free-form string to a Pattern. Unknown values fall back to Monthly.
func ParsePattern(s string) Pattern {
	switch Pattern(strings.ToLower(strings.TrimSpace(s))) {
	case Weekly:
		return Weekly
	case Yearly:
		return Yearly
	default:
		return Monthly
	}
}

// Net returns the signed amount in cents.
func (t Transaction) Net() int64 {
	return t.Kind.Sign() * t.Amount.Cents
}

// Scheduled reports whether the transaction was produced by a series or an installment plan.
func (t Transaction) Scheduled() bool {
	return t.SeriesID != "" || t.InstallmentID != ""
}

func validateText(description, category string) error {
	if len(strings.TrimSpace(description)) == 0 {
		return ErrEmptyDescription
	}
	if len(description) > maxDescriptionLen {
		return ErrDescriptionTooLong
	}
	if strings.TrimSpace(category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	return validateText(t.Description, t.Category)
}

func (rs RecurringSeries) Validate() error {
	if err := rs.Anchor.Validate(); err != nil {
		return fmt.Errorf("invalid anchor date: %w", err)
	}

	if !rs.EndDate.IsZero() {
		if err := rs.EndDate.Validate(); err != nil {
			return fmt.Errorf("invalid end date: %w", err)
		}
		if rs.EndDate.Before(rs.Anchor.Time) {
			return ErrEndBeforeAnchor
		}
	}

	switch rs.Pattern {
	case Weekly, Monthly, Yearly:
	default:
		return ErrInvalidPattern
	}

	if rs.TargetDay < 0 || rs.TargetDay > 31 {
		return ErrInvalidDay
	}
	if err := rs.Kind.Validate(); err != nil {
		return err
	}
	if err := rs.Amount.Validate(); err != nil {
		return err
	}
	return validateText(rs.Description, rs.Category)
}

func (c Card) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyCardName
	}
	if c.ClosingDay < 1 || c.ClosingDay > 31 {
		return ErrInvalidClosingDay
	}
	if c.DueDay < 1 || c.DueDay > 31 {
		return ErrInvalidDueDay
	}
	return nil
}

func (p Purchase) Validate() error {
	if strings.TrimSpace(p.CardID) == "" {
		return ErrEmptyCardID
	}
	if err := p.Date.Validate(); err != nil {
		return err
	}
	if err := p.Amount.Validate(); err != nil {
		return err
	}
	if p.Installments < 1 {
		return ErrInvalidInstallments
	}
	return validateText(p.Description, p.Category)
}
