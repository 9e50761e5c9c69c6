package postgres

import (
	"context"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
	trmcontext "github.com/avito-tech/go-transaction-manager/trm/v2/context"
	trmmanager "github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ctxGetter = trmpgx.DefaultCtxGetter

// TxManager implements repository.UnitOfWork on top of a pgx pool
type TxManager struct {
	tm trm.Manager
}

// NewTxManager creates a transaction manager bound to the pool
func NewTxManager(db *pgxpool.Pool) *TxManager {
	mgr := trmmanager.Must(
		trmpgx.NewDefaultFactory(db),
		trmmanager.WithCtxManager(trmcontext.DefaultManager),
	)

	return &TxManager{tm: mgr}
}

// WithinTx runs fn in a transaction; nested calls join the outer one
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.tm.Do(ctx, fn)
}

// conn returns the transaction stored in ctx or the pool itself
func conn(ctx context.Context, db *pgxpool.Pool) trmpgx.Tr {
	return ctxGetter.DefaultTrOrDB(ctx, db)
}
