// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without depending on a particular storage backend.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrDeskNotFound is returned when a desk cannot be located.  Handlers
// should translate this into an HTTP 404 response.
var ErrDeskNotFound = errors.New("desk not found")

// ErrDuplicateDesk is returned when a desk name is already taken.
var ErrDuplicateDesk = errors.New("desk name already exists")

// mysqlDuplicateEntry is the server error number for unique key violations.
const mysqlDuplicateEntry = 1062

func isDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
