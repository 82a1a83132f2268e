package helpers

import (
	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// DriverNamer is implemented by *sqlx.DB and *sqlx.Tx
type DriverNamer interface {
	DriverName() string
}

// StatementBuilder returns a squirrel builder whose placeholder format matches the
// driver behind db ($1 for PostgreSQL, ? for SQLite).
func StatementBuilder(db DriverNamer) squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(PlaceholderFormat(db.DriverName()))
}

// PlaceholderFormat maps a database/sql driver name to its squirrel placeholder format.
func PlaceholderFormat(driverName string) squirrel.PlaceholderFormat {
	if sqlx.BindType(driverName) == sqlx.DOLLAR {
		return squirrel.Dollar
	}
	return squirrel.Question
}
