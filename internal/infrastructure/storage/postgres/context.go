package postgres

import (
	"context"
	"fmt"
)

type txManagerKey struct{}

// WithTxManager stores the TxManager in the context. The HTTP layer
// injects it per request; repositories retrieve it with MustGetTxManager.
func WithTxManager(ctx context.Context, txm *TxManager) context.Context {
	return context.WithValue(ctx, txManagerKey{}, txm)
}

// GetTxManager returns the TxManager from context, or nil.
func GetTxManager(ctx context.Context) *TxManager {
	txm, _ := ctx.Value(txManagerKey{}).(*TxManager)
	return txm
}

// MustGetTxManager returns the TxManager from context, panicking when
// absent. It is meant for infrastructure code that needs access to
// GetQuerier()/GetTx().
//
// Domain code should depend only on internal/core/tx.Manager.
func MustGetTxManager(ctx context.Context) *TxManager {
	txm := GetTxManager(ctx)
	if txm == nil {
		panic(fmt.Sprintf("TxManager missing from context: %v", ctx))
	}
	return txm
}
