package mysql

import (
	"errors"

	driver "github.com/go-sql-driver/mysql"
)

const (
	errDuplicateEntry  = 1062
	errLockWaitTimeout = 1205
	errDeadlock        = 1213
	errRowIsReferenced = 1451
	errNoReferencedRow = 1452
)

func errorNumber(err error) uint16 {
	var mysqlErr *driver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number
	}
	return 0
}

// IsDeadlock reports errors worth retrying the whole transaction for.
func IsDeadlock(err error) bool {
	n := errorNumber(err)
	return n == errDeadlock || n == errLockWaitTimeout
}

func IsDuplicateKey(err error) bool {
	return errorNumber(err) == errDuplicateEntry
}

func IsForeignKeyViolation(err error) bool {
	n := errorNumber(err)
	return n == errRowIsReferenced || n == errNoReferencedRow
}
