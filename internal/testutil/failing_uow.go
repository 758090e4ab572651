package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/alexanderramin/shiftlog/internal/db"
)

// FailingUoW injects Err into transactions to exercise rollback paths.
//
// FailOn fails the Nth ExecContext call of every transaction, counting from
// 1; reads are never counted. FailBegin fails each transaction before it
// starts, which is how a storage outage looks to a loader.
type FailingUoW struct {
	DB        *sql.DB
	FailOn    int32
	FailBegin bool
	Err       error

	txs atomic.Int32
}

// Transactions reports how many transactions were attempted.
func (u *FailingUoW) Transactions() int {
	return int(u.txs.Load())
}

func (u *FailingUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	u.txs.Add(1)
	if u.FailBegin {
		return fmt.Errorf("beginning transaction: %w", u.Err)
	}
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	wrapped := &failOnNthExec{DBTX: tx, failOn: u.FailOn, err: u.Err}
	if err := fn(ctx, wrapped); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type failOnNthExec struct {
	db.DBTX
	count  atomic.Int32
	failOn int32
	err    error
}

func (f *failOnNthExec) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if n := f.count.Add(1); n == f.failOn {
		return nil, f.err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
