package db

import (
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ViolationKind names the integrity rule a write broke.
type ViolationKind string

const (
	ViolationNone       ViolationKind = ""
	ViolationUnique     ViolationKind = "unique"
	ViolationForeignKey ViolationKind = "foreign_key"
	ViolationCheck      ViolationKind = "check"
	ViolationNotNull    ViolationKind = "not_null"
)

// IntegrityViolation is the driver-independent description of a rejected write.
type IntegrityViolation struct {
	Kind       ViolationKind
	Constraint string
	Column     string
	Value      string
}

// Postgres details look like `Key (username)=(ember_fan) already exists.`
var pgDetailRe = regexp.MustCompile(`\((.*)\)=\((.*)\)`)

// sqlite reports `UNIQUE constraint failed: users.username`.
var sqliteUniqueRe = regexp.MustCompile(`UNIQUE constraint failed: ([\w.]+)`)

// Classify inspects err and reports the integrity violation it represents.
// The boolean is false when err is not an integrity error.
func Classify(err error) (IntegrityViolation, bool) {
	if err == nil {
		return IntegrityViolation{}, false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		v := IntegrityViolation{Constraint: pgErr.ConstraintName, Column: pgErr.ColumnName}
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			v.Kind = ViolationUnique
		case pgerrcode.ForeignKeyViolation:
			v.Kind = ViolationForeignKey
		case pgerrcode.CheckViolation:
			v.Kind = ViolationCheck
		case pgerrcode.NotNullViolation:
			v.Kind = ViolationNotNull
		default:
			return IntegrityViolation{}, false
		}
		if m := pgDetailRe.FindStringSubmatch(pgErr.Detail); m != nil {
			v.Column, v.Value = m[1], m[2]
		}
		return v, true
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		v := IntegrityViolation{Kind: ViolationUnique}
		if m := sqliteUniqueRe.FindStringSubmatch(msg); m != nil {
			col := m[1]
			if idx := strings.LastIndex(col, "."); idx >= 0 {
				col = col[idx+1:]
			}
			v.Column = col
		}
		return v, true
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return IntegrityViolation{Kind: ViolationForeignKey}, true
	case strings.Contains(msg, "CHECK constraint failed"):
		return IntegrityViolation{Kind: ViolationCheck}, true
	case strings.Contains(msg, "NOT NULL constraint failed"):
		return IntegrityViolation{Kind: ViolationNotNull}, true
	}
	return IntegrityViolation{}, false
}

// IsUniqueViolation reports whether the provided error is a unique violation.
// When constraintName is provided, the violation must name that constraint.
func IsUniqueViolation(err error, constraintName string) bool {
	v, ok := Classify(err)
	if !ok || v.Kind != ViolationUnique {
		return false
	}
	if constraintName != "" {
		return v.Constraint == constraintName || strings.Contains(err.Error(), constraintName)
	}
	return true
}

// IsForeignKeyViolation reports whether err is a foreign key violation.
func IsForeignKeyViolation(err error) bool {
	v, ok := Classify(err)
	return ok && v.Kind == ViolationForeignKey
}
