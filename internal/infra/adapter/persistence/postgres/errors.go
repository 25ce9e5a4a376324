package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL unique_violation error code.
const uniqueViolationCode = "23505"

// isUniqueViolation reports whether err is a unique-constraint violation.
// The uniqueness constraints on articles.url and sources.feed_url are the
// dedup authority; repos translate 23505 into the matching domain sentinel.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
