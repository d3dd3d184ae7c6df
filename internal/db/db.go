package db

import "database/sql"

// DB wraps the sql pool handed to repository code.
type DB struct {
	*sql.DB
}
