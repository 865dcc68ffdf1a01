package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// unavailableClasses are the SQLSTATE classes for connection exceptions,
// insufficient resources and operator intervention.
var unavailableClasses = []string{"08", "53", "57P"}

// IsUniqueViolation reports whether err is a Postgres unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// IsUnavailable reports whether err means the database could not serve the
// request, as opposed to rejecting it. Only connection, timeout and
// server-availability failures count; scan and conversion errors do not.
func IsUnavailable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		for _, class := range unavailableClasses {
			if strings.HasPrefix(pgErr.Code, class) {
				return true
			}
		}

		return false
	}

	var (
		connectErr *pgconn.ConnectError
		netErr     net.Error
	)

	switch {
	case errors.As(err, &connectErr), errors.As(err, &netErr):
		return true
	case pgconn.Timeout(err), pgconn.SafeToRetry(err):
		return true
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF):
		return true
	}

	return false
}
