// Package service implements the order/inventory transaction engine: order
// aggregate editing, the order state machine, the stock ledger, bulk
// coordination and session revocation. Every mutating path runs inside a
// store transaction with bounded retry on writer-lock contention.
package service

import (
	"context"
	"errors"

	"github.com/mauropillox/chorilocal-sub000/internal/apierror"
	"github.com/mauropillox/chorilocal-sub000/internal/infra"

	"gorm.io/gorm"
)

// Actor is the authenticated identity performing an operation, supplied by
// the auth layer.
type Actor struct {
	Username string
	Rol      string
}

// VeTodo reports whether the actor sees every pedido. Vendedores only see
// pedidos they created; that filter is applied at the query layer.
func (a Actor) VeTodo() bool { return a.Rol != "vendedor" }

// runTx executes fn inside a retrying transaction when db is available, or
// calls fn(nil) directly when db is nil (unit tests run against stub repos).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return infra.RunInTx(ctx, db, fn)
}

// mapNotFound converts a repo lookup error into the service taxonomy:
// missing rows become NotFound with the given message, anything else is
// wrapped as Unexpected.
func mapNotFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierror.NotFoundf(format, args...)
	}
	return apierror.Unexpected(err)
}
