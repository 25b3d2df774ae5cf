package postgresql

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/cmlabs-hris/leave-analyzer/internal/domain/attendance"
	"github.com/jackc/pgx/v5/pgconn"
)

// isUnavailable reports whether err means the database could not be reached
// or did not answer in time, as opposed to rejecting the statement.
func isUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if pgconn.Timeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 08 connection exception, 53 insufficient resources, 57P0x shutdown
		return strings.HasPrefix(pgErr.Code, "08") ||
			strings.HasPrefix(pgErr.Code, "53") ||
			strings.HasPrefix(pgErr.Code, "57P0")
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// storageError marks availability failures with ErrStorageUnavailable and
// wraps every other error as is.
func storageError(msg string, err error) error {
	if isUnavailable(err) {
		return fmt.Errorf("%w: %s: %v", attendance.ErrStorageUnavailable, msg, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
