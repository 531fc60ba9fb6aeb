package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"agristock/pkg/validator"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvoiceNotFound    = errors.New("invoice not found")
	ErrPurchaseNotFound   = errors.New("purchase not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrSupplierNotFound   = errors.New("supplier not found")
	ErrConflict           = errors.New("concurrent update conflict, retry the operation")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrSessionReplaced    = errors.New("session expired (logged in on another device)")
)

// ValidationError describes the first rule a request failed
type ValidationError struct {
	Field   string
	Tag     string
	Details string
}

func (e *ValidationError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("validation failed: field '%s' %s", e.Field, e.Details)
	}
	return fmt.Sprintf("validation failed: field '%s' failed on tag '%s'", e.Field, e.Tag)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// LedgerError wraps a failure inside a document transaction
type LedgerError struct {
	Op    string
	DocID string
	Err   error
}

func (e *LedgerError) Error() string {
	if e.DocID != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.DocID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}

// validate runs the struct rules and returns the first failure
func validate(v interface{}) error {
	errs := validator.ValidateStruct(v)
	if len(errs) == 0 {
		return nil
	}
	first := errs[0]
	return &ValidationError{Field: first.FailedField, Tag: first.Tag, Details: describeRule(first.Tag, first.Value)}
}

func describeRule(tag, param string) string {
	switch tag {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("needs at least %s entries", param)
	case "gt":
		return fmt.Sprintf("must be greater than %s", param)
	case "gte":
		return fmt.Sprintf("must be at least %s", param)
	case "lte":
		return fmt.Sprintf("must be at most %s", param)
	case "oneof":
		return fmt.Sprintf("must be one of %s", strings.ReplaceAll(param, " ", ", "))
	case "datetime":
		return "must be a date in YYYY-MM-DD form"
	}
	return ""
}

func newValidationError(field, details string) error {
	return &ValidationError{Field: field, Tag: "invalid", Details: details}
}

// mapTxError turns driver and gorm errors into the service taxonomy.
// notFound is returned for a missing record.
func mapTxError(err, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.Message)
		}
	}
	return err
}

// IsNotFound reports whether err is any of the not-found sentinels
func IsNotFound(err error) bool {
	return errors.Is(err, ErrInvoiceNotFound) || errors.Is(err, ErrPurchaseNotFound) ||
		errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrSupplierNotFound) || errors.Is(err, ErrUserNotFound)
}
