package sqlite

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/aliskhannn/times-table-bot/internal/service"
)

type Transactor struct {
	db *sqlx.DB
}

func NewTransactor(db *sqlx.DB) *Transactor {
	return &Transactor{db: db}
}

// WithinTx runs fn with repositories bound to one transaction.
func (t *Transactor) WithinTx(
	ctx context.Context,
	fn func(ctx context.Context, users service.UserRepository, settings service.SettingsRepository) error,
) error {
	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(ctx, NewUserRepository(tx), NewSettingsRepository(tx)); err != nil {
		return err
	}

	return tx.Commit()
}
