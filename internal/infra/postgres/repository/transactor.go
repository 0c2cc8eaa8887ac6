package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/times-table-bot/internal/infra/postgres"
	"github.com/aliskhannn/times-table-bot/internal/service"
)

// Transactor hands out repositories bound to one Postgres transaction.
type Transactor struct {
	tx *postgres.Transactor
}

func NewTransactor(tx *postgres.Transactor) *Transactor {
	return &Transactor{tx: tx}
}

func (t *Transactor) WithinTx(
	ctx context.Context,
	fn func(ctx context.Context, users service.UserRepository, settings service.SettingsRepository) error,
) error {
	return t.tx.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, NewUserRepository(tx), NewSettingsRepository(tx))
	})
}
