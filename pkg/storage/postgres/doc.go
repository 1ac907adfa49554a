// Package postgres implements the authflow store ports and the authz
// permission source on top of pgx/v5.
//
// All stores read the active transaction from the context when one was
// opened by UnitOfWork.Run, so the same store value works inside and outside
// a transaction. The schema lives in the migrations directory and is applied
// with pkg/pg.Migrate.
package postgres
