package domain

import (
	"errors"
	"fmt"
)

// Rejection kinds. Every failed mutation wraps exactly one of these.
var (
	ErrNotAuthorized       = errors.New("not authorized")
	ErrInvalidRating       = errors.New("invalid rating")
	ErrInvalidStringLength = errors.New("invalid string length")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrNotFound            = errors.New("not found")
	ErrEmptyField          = errors.New("empty field")
)

type Kind string

const (
	KindNone                Kind = ""
	KindNotAuthorized       Kind = "not_authorized"
	KindInvalidRating       Kind = "invalid_rating"
	KindInvalidStringLength Kind = "invalid_string_length"
	KindInvalidDate         Kind = "invalid_date"
	KindInvalidStatus       Kind = "invalid_status"
	KindNotFound            Kind = "not_found"
	KindEmptyField          Kind = "empty_field"
)

var kinds = []struct {
	kind Kind
	err  error
	code uint
}{
	{KindNotAuthorized, ErrNotAuthorized, 401},
	{KindInvalidRating, ErrInvalidRating, 402},
	{KindInvalidStringLength, ErrInvalidStringLength, 403},
	{KindNotFound, ErrNotFound, 404},
	{KindInvalidStatus, ErrInvalidStatus, 405},
	{KindInvalidDate, ErrInvalidDate, 406},
	{KindEmptyField, ErrEmptyField, 407},
}

// RuleError is a rejected mutation: the kind plus the rule that failed.
type RuleError struct {
	Kind error
	Rule string
}

func (e *RuleError) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Rule) }
func (e *RuleError) Unwrap() error { return e.Kind }

// Reject builds the error for a failed rule of the given kind.
func Reject(kind error, rule string) error {
	return &RuleError{Kind: kind, Rule: rule}
}

// KindOf reports the rejection kind carried by err, or KindNone for nil and
// infrastructure errors.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindNone
}

// Code is the numeric error code of a rejection kind, 0 for KindNone.
func (k Kind) Code() uint {
	for _, e := range kinds {
		if e.kind == k {
			return e.code
		}
	}
	return 0
}

// RuleOf returns the failed rule name of a rejection, or "".
func RuleOf(err error) string {
	var re *RuleError
	if errors.As(err, &re) {
		return re.Rule
	}
	return ""
}
