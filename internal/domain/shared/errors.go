package shared

// ErrorKind classifies a domain error for transport mapping
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindInternal   ErrorKind = "internal"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Kind    ErrorKind              `json:"-"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// WithDetail returns a copy of the error carrying an extra detail field.
// Used to attach actionable numbers (available credit, available stock)
// without mutating the shared sentinel errors.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	details := make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &DomainError{Code: e.Code, Message: e.Message, Kind: e.Kind, Details: details}
}

// WithMessage returns a copy of the error with a more specific message
func (e *DomainError) WithMessage(message string) *DomainError {
	return &DomainError{Code: e.Code, Message: message, Kind: e.Kind, Details: e.Details}
}

// NewDomainError creates a new conflict-kind domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Kind: KindConflict}
}

// NewValidationError creates a new validation-kind domain error
func NewValidationError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Kind: KindValidation}
}

// NewNotFoundError creates a new not-found-kind domain error
func NewNotFoundError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Kind: KindNotFound}
}

// NewInternalError creates a new internal-kind domain error
func NewInternalError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Kind: KindInternal}
}

// Common domain errors
var (
	ErrNotFound               = NewNotFoundError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists          = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput           = NewValidationError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict    = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidStateTransition = NewDomainError("INVALID_STATE_TRANSITION", "Operation not allowed in current state")
	ErrInsufficientStock      = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrCreditLimitExceeded    = NewDomainError("CREDIT_LIMIT_EXCEEDED", "Credit limit exceeded")
	ErrCustomerInactive       = NewDomainError("CUSTOMER_INACTIVE", "Customer is inactive")
	ErrProductUnavailable     = NewDomainError("PRODUCT_UNAVAILABLE", "Product is not available")
	ErrOverpayment            = NewDomainError("OVERPAYMENT_NOT_SUPPORTED", "Payment exceeds outstanding debt")
	ErrRegisterClosed         = NewDomainError("REGISTER_CLOSED", "Cash register is already closed")
)

// IsKind reports whether err is a DomainError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	de, ok := err.(*DomainError)
	return ok && de.Kind == kind
}

// IsNotFound reports whether err is a not-found domain error
func IsNotFound(err error) bool { return IsKind(err, KindNotFound) }

// IsValidation reports whether err is a validation domain error
func IsValidation(err error) bool { return IsKind(err, KindValidation) }

// IsConflict reports whether err is a conflict domain error
func IsConflict(err error) bool { return IsKind(err, KindConflict) }

// CodeOf returns the code of a DomainError, or empty string otherwise
func CodeOf(err error) string {
	if de, ok := err.(*DomainError); ok {
		return de.Code
	}
	return ""
}
