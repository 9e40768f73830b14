package database

import (
	"context"
	"errors"
)

var errNoTransaction = errors.New("no transaction in context")

// UnitOfWork implements application.UnitOfWork on any Connection. Nested
// Begin calls join the outer transaction and leave commit to its owner.
// Hooks registered with AfterCommit run after the owner commits.
type UnitOfWork struct {
	conn Connection
}

// NewUnitOfWork creates a UnitOfWork.
func NewUnitOfWork(conn Connection) *UnitOfWork {
	return &UnitOfWork{conn: conn}
}

func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if info, ok := txFromContext(ctx); ok {
		return joinTx(ctx, info), nil
	}
	tx, err := u.conn.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return WithTx(ctx, tx, true), nil
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	info, ok := txFromContext(ctx)
	if !ok {
		return errNoTransaction
	}
	if !info.owned {
		return nil
	}
	if err := info.tx.Commit(ctx); err != nil {
		return err
	}
	hooks := *info.hooks
	*info.hooks = nil
	for _, fn := range hooks {
		fn()
	}
	return nil
}

func (u *UnitOfWork) Rollback(ctx context.Context) error {
	info, ok := txFromContext(ctx)
	if !ok {
		return errNoTransaction
	}
	if !info.owned {
		return nil
	}
	*info.hooks = nil
	return info.tx.Rollback(ctx)
}
