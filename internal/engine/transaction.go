package engine

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/chartstore/pkg/types"
)

// BeginTransaction opens the engine's single transaction slot and returns
// the transaction id. Mutations performed while it is open apply
// immediately but are recorded with their before-images;
// RollbackTransaction restores those images in reverse order. This is
// compensating rollback, not isolation: writes that interleave from other
// callers can be overwritten by a rollback.
func (e *Engine) BeginTransaction(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.txn != nil {
		return "", types.ErrTransactionActive
	}
	e.txn = &types.Transaction{
		ID:        e.newID(),
		Status:    types.TxnPending,
		StartedAt: e.now(),
	}
	return e.txn.ID, nil
}

// CommitTransaction closes the transaction and discards its rollback log.
func (e *Engine) CommitTransaction(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.txn == nil || e.txn.ID != id {
		return fmt.Errorf("%w: %s", types.ErrTransactionNotFound, id)
	}
	e.txn.Status = types.TxnCommitted
	e.txn = nil
	return nil
}

// RollbackTransaction restores the before-image of every recorded
// operation, newest first. Restorations do not notify subscribers and do
// not append sync log rows; the remote peer reconciles through the
// original entries.
func (e *Engine) RollbackTransaction(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.txn == nil || e.txn.ID != id {
		return fmt.Errorf("%w: %s", types.ErrTransactionNotFound, id)
	}
	txn := e.txn
	// Clear the slot first so the restorations below are not recorded.
	e.txn = nil

	touched := make(map[string]bool)
	for i := len(txn.Ops) - 1; i >= 0; i-- {
		op := txn.Ops[i]
		if err := e.revertLocked(ctx, op); err != nil {
			txn.Status = types.TxnRolledBack
			return fmt.Errorf("rollback %s: %w", id, err)
		}
		touched[op.Collection()] = true
	}
	for col := range touched {
		if docs, err := e.readCollection(ctx, col); err == nil {
			e.refreshIndexesLocked(ctx, col, docs)
		}
		e.cache.invalidateCollection(col)
	}
	txn.Status = types.TxnRolledBack
	return nil
}

func (e *Engine) revertLocked(ctx context.Context, op types.Operation) error {
	switch o := op.(type) {
	case types.Created:
		docs, err := e.readCollection(ctx, o.Col)
		if err != nil {
			return err
		}
		i := findDoc(docs, o.Doc.ID())
		if i < 0 {
			return nil
		}
		return e.writeCollection(ctx, o.Col, append(docs[:i], docs[i+1:]...))

	case types.Updated:
		docs, err := e.readCollection(ctx, o.Col)
		if err != nil {
			return err
		}
		if i := findDoc(docs, o.Before.ID()); i >= 0 {
			docs[i] = o.Before.Clone()
		} else {
			docs = append(docs, o.Before.Clone())
		}
		return e.writeCollection(ctx, o.Col, docs)

	case types.Deleted:
		docs, err := e.readCollection(ctx, o.Col)
		if err != nil {
			return err
		}
		if findDoc(docs, o.Doc.ID()) >= 0 {
			return nil
		}
		return e.writeCollection(ctx, o.Col, append(docs, o.Doc.Clone()))

	default:
		return fmt.Errorf("unknown operation type %T", op)
	}
}

// recordOp appends op to the active transaction. Callers hold the engine
// lock.
func (e *Engine) recordOp(op types.Operation) {
	if e.txn != nil && e.txn.Status == types.TxnPending {
		e.txn.Ops = append(e.txn.Ops, op)
	}
}
