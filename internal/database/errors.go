package database

import (
	"errors"
	"strings"

	"github.com/uptrace/bun/driver/pgdriver"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const pgUniqueViolation = "23505"

// UniqueViolation reports whether err is a unique-constraint violation and, if
// so, returns text identifying the violated constraint. For postgres this is
// the constraint name (e.g. "users_email_key"), for sqlite the offending
// column (e.g. "users.email").
func UniqueViolation(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		if pgErr.Field('C') != pgUniqueViolation {
			return "", false
		}
		if name := pgErr.Field('n'); name != "" {
			return name, true
		}
		return pgErr.Field('D'), true
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		if liteErr.Code()&0xff != sqlite3.SQLITE_CONSTRAINT {
			return "", false
		}
		msg := liteErr.Error()
		_, column, found := strings.Cut(msg, "UNIQUE constraint failed: ")
		if !found {
			return "", false
		}
		column, _, _ = strings.Cut(column, " ")
		return column, true
	}

	return "", false
}
