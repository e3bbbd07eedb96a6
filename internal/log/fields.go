package log

import "cashflow/internal/core"

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldQuery         = "query"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldUserAgent     = "user_agent"
	FieldSuccess       = "success"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldTransactionID = "transaction_id"
	FieldKind          = "kind"
	FieldDate          = "date"
	FieldAmountCents   = "amount_cents"
	FieldCategory      = "category"
	FieldSeriesID      = "series_id"
	FieldPattern       = "pattern"
	FieldInstallmentID = "installment_id"
	FieldCardID        = "card_id"
	FieldCount         = "count"
)

// Components defines standard component names
const (
	ComponentApp         = "app"
	ComponentHTTP        = "http"
	ComponentTransaction = "transaction"
	ComponentRecurring   = "recurring"
	ComponentBilling     = "billing"
	ComponentProjection  = "projection"
	ComponentStorage     = "storage"
	ComponentAMQP        = "amqp"
	ComponentWorker      = "worker"
	ComponentSheets      = "sheets"
	ComponentCache       = "cache"
	ComponentRateLimit   = "rate_limit"
)

// Operations defines standard operation names
const (
	OpCreate      = "create"
	OpDelete      = "delete"
	OpList        = "list"
	OpMaterialize = "materialize"
	OpProject     = "project"
	OpSync        = "sync"
	OpValidate    = "validate"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithRequestID adds request ID field
func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithTransaction adds transaction-related fields
func (f LogFields) WithTransaction(t core.Transaction) LogFields {
	f[FieldTransactionID] = t.ID
	f[FieldKind] = string(t.Kind)
	f[FieldDate] = t.Date.String()
	f[FieldAmountCents] = t.Amount.Cents
	f[FieldCategory] = t.Category
	if t.SeriesID != "" {
		f[FieldSeriesID] = t.SeriesID
	}
	if t.InstallmentID != "" {
		f[FieldInstallmentID] = t.InstallmentID
	}
	return f
}

// WithSeries adds recurring series fields
func (f LogFields) WithSeries(rs core.RecurringSeries) LogFields {
	f[FieldSeriesID] = rs.ID
	f[FieldPattern] = string(rs.Pattern)
	f[FieldAmountCents] = rs.Amount.Cents
	return f
}

// WithHTTPResponse adds HTTP response fields
func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = statusCode < 400
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
