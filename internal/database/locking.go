package database

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LockForUpdate adds SELECT ... FOR UPDATE on dialects that support it.
// SQLite (tests) serializes writers at the connection level, so the clause
// is omitted there rather than generating invalid SQL.
func LockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
