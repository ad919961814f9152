package services

import (
	"errors"
	"sort"
	"strings"
)

// Общие ошибки, используемые в сервисах и маппинге HTTP.
var (
	ErrValidationFailed = errors.New("validation failed")

	// Ошибки авторизации
	ErrNotOperator        = errors.New("only operators can manage match results")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// Ошибки сущностей
	ErrMatchNotFound  = errors.New("match not found")
	ErrResultNotFound = errors.New("results not found")
	ErrReportNotFound = errors.New("report not available")

	// Ошибки конфликтов
	ErrResultsAlreadySubmitted = errors.New("Results already submitted")
	ErrSubmissionInProgress    = errors.New("results submission already in progress")
	ErrMatchCanceled           = errors.New("match was canceled")

	ErrNoConfirmedPlayers = errors.New("match has no confirmed players")
)

// ValidationError carries per-field messages. It matches ErrValidationFailed
// with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
