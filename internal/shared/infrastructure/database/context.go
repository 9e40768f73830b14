package database

import "context"

type txKey struct{}

type txInfo struct {
	tx    Transaction
	owned bool
	hooks *[]func()
}

// WithTx stores tx in ctx. owned marks the unit of work that must end it.
func WithTx(ctx context.Context, tx Transaction, owned bool) context.Context {
	return context.WithValue(ctx, txKey{}, txInfo{tx: tx, owned: owned, hooks: new([]func())})
}

// joinTx marks ctx as a nested unit of work inside info's transaction.
func joinTx(ctx context.Context, info txInfo) context.Context {
	info.owned = false
	return context.WithValue(ctx, txKey{}, info)
}

func txFromContext(ctx context.Context) (txInfo, bool) {
	info, ok := ctx.Value(txKey{}).(txInfo)
	return info, ok && info.tx != nil
}

// InTransaction reports whether ctx carries a transaction.
func InTransaction(ctx context.Context) bool {
	_, ok := txFromContext(ctx)
	return ok
}

// AfterCommit runs fn once the transaction carried by ctx commits, or
// right away when ctx has none. Hooks are discarded on rollback.
func AfterCommit(ctx context.Context, fn func()) {
	info, ok := txFromContext(ctx)
	if !ok || info.hooks == nil {
		fn()
		return
	}
	*info.hooks = append(*info.hooks, fn)
}

// ExecutorFromContext returns the transaction carried by ctx, or conn.
func ExecutorFromContext(ctx context.Context, conn Connection) Executor {
	if info, ok := txFromContext(ctx); ok {
		return info.tx
	}
	return conn
}
