package database

import (
	"strings"

	"github.com/lib/pq"
	"github.com/quadrant/quadrant-backend/pkg/errors"
)

// pq error codes we care about
const (
	codeNotNullViolation   = "23502"
	codeForeignKeyViolation = "23503"
	codeUniqueViolation    = "23505"
	codeCheckViolation     = "23514"
	codeUndefinedTable     = "42P01"
)

// IsUndefinedTable reports whether err is a PostgreSQL "relation does not
// exist" error. Workspaces mid-migration may lack newer tables; callers use
// this to degrade to empty results instead of string-matching error text.
func IsUndefinedTable(err error) bool {
	pqErr, ok := err.(*pq.Error)
	if !ok {
		return false
	}
	return pqErr.Code == codeUndefinedTable
}

// MapPQError converts a PostgreSQL error to an AppError with meaningful messages.
// Returns nil if the error is not a pq.Error.
func MapPQError(err error) *errors.AppError {
	pqErr, ok := err.(*pq.Error)
	if !ok {
		return nil
	}

	switch pqErr.Code {
	case codeCheckViolation:
		return mapCheckConstraint(pqErr)

	case codeUniqueViolation:
		return errors.Conflict(formatConstraintMessage(pqErr))

	case codeForeignKeyViolation:
		return errors.BadRequest("referenced record does not exist")

	case codeNotNullViolation:
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.Validation(map[string]string{
			col: "must not be empty",
		})

	default:
		return nil
	}
}

// mapCheckConstraint maps specific CHECK constraint names to user-friendly messages.
func mapCheckConstraint(pqErr *pq.Error) *errors.AppError {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "skill_level_range"):
		return errors.Validation(map[string]string{
			"level": "must be between 1 and 5",
		})

	case strings.Contains(constraint, "risk_level_valid"):
		return errors.Validation(map[string]string{
			"level": "must be one of: low, medium, high",
		})

	case strings.Contains(constraint, "status_valid"):
		return errors.Validation(map[string]string{
			"status": "invalid status value",
		})

	default:
		return errors.BadRequest("data validation failed: " + constraint)
	}
}

// formatConstraintMessage creates a user-friendly message for unique constraint violations.
func formatConstraintMessage(pqErr *pq.Error) string {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "employee_skill"):
		return "this employee already has a rating for this skill"
	case strings.Contains(constraint, "skill_name"):
		return "a skill with this name already exists in the workspace"
	case strings.Contains(constraint, "cycle_participant"):
		return "this employee is already a participant of the cycle"
	default:
		return "a record with these values already exists"
	}
}
