package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MinRating = 1
	MaxRating = 5
	MinScore  = 0
	MaxScore  = 100

	MaxFeedbackComment = 500
	MaxCategoryComment = 200
	MaxLocation        = 200
	MaxInspectionNotes = 500

	// Identifier and label widths match the storage columns.
	MaxActorID       = 128
	MaxServiceType   = 128
	MaxLabel         = 64
	MaxInspectorName = 255
	// MaxResultNotes is what a utf8mb4 TEXT column holds in the worst case.
	MaxResultNotes = 16383
)

// FirstFailure returns the first non-nil check result. Callers list checks in
// rule order so the reported rule is deterministic.
func FirstFailure(checks ...error) error {
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	return nil
}

func Rating(field string, v int) error {
	if v < MinRating || v > MaxRating {
		return Reject(ErrInvalidRating, fmt.Sprintf("%s must be between %d and %d, got %d", field, MinRating, MaxRating, v))
	}
	return nil
}

func Score(field string, v int) error {
	if v < MinScore || v > MaxScore {
		return Reject(ErrInvalidRating, fmt.Sprintf("%s must be between %d and %d, got %d", field, MinScore, MaxScore, v))
	}
	return nil
}

// MaxLength counts characters, not bytes.
func MaxLength(field, s string, max int) error {
	if n := utf8.RuneCountInString(s); n > max {
		return Reject(ErrInvalidStringLength, fmt.Sprintf("%s exceeds %d characters (%d)", field, max, n))
	}
	return nil
}

func NonEmpty(field, s string) error {
	if strings.TrimSpace(s) == "" {
		return Reject(ErrEmptyField, field+" is required")
	}
	return nil
}

// NotAfter requires d <= limit.
func NotAfter(field string, d, limit Height) error {
	if d > limit {
		return Reject(ErrInvalidDate, fmt.Sprintf("%s %d is after %d", field, d, limit))
	}
	return nil
}

// NotBefore requires d >= limit.
func NotBefore(field string, d, limit Height) error {
	if d < limit {
		return Reject(ErrInvalidDate, fmt.Sprintf("%s %d is before %d", field, d, limit))
	}
	return nil
}

func Specializations(specs []string) error {
	if len(specs) == 0 {
		return Reject(ErrEmptyField, "specializations is required")
	}
	for i, s := range specs {
		if strings.TrimSpace(s) == "" {
			return Reject(ErrEmptyField, fmt.Sprintf("specializations[%d] is empty", i))
		}
	}
	return nil
}
