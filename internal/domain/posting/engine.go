package posting

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"stocklot/internal/core/apperror"
	"stocklot/internal/core/id"
	"stocklot/internal/core/tx"
	"stocklot/internal/domain/ledger"
	"stocklot/pkg/logger"
)

// AuditAction identifies a document lifecycle event in the audit log.
type AuditAction string

const (
	AuditActionPost   AuditAction = "post"
	AuditActionUnpost AuditAction = "unpost"
	AuditActionRepost AuditAction = "repost"
)

// Auditor records document lifecycle events. Implemented by the
// postgres audit service; a nil Auditor disables auditing.
type Auditor interface {
	Record(ctx context.Context, action AuditAction, documentType string, documentID id.ID, payload any) error
}

// Engine orchestrates posting, unposting and reposting of documents.
// Each operation runs in a single transaction: stock check, movement
// recording and the document state change commit or roll back together.
type Engine struct {
	ledger    *ledger.Service
	txManager tx.Manager
	auditor   Auditor
}

// NewEngine creates a posting engine.
func NewEngine(ledgerSvc *ledger.Service, txManager tx.Manager, auditor Auditor) *Engine {
	return &Engine{
		ledger:    ledgerSvc,
		txManager: txManager,
		auditor:   auditor,
	}
}

// Post validates the document, checks stock for its outgoing lines and
// records its movements. updateDoc persists the document's state change
// within the same transaction.
func (e *Engine) Post(ctx context.Context, doc Postable, updateDoc func(ctx context.Context) error) error {
	if doc.IsPosted() {
		return apperror.NewBusinessRule(
			apperror.CodeDocumentPosted,
			"Document is already posted",
		).WithDetail("document_id", doc.GetID().String())
	}

	if err := doc.CanPost(ctx); err != nil {
		return err
	}

	movements, err := doc.GenerateMovements(ctx)
	if err != nil {
		return fmt.Errorf("generate movements: %w", err)
	}
	if movements.IsEmpty() {
		return apperror.NewValidation("document generates no movements").
			WithDetail("document_id", doc.GetID().String())
	}

	err = e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := e.checkStock(ctx, movements); err != nil {
			return err
		}

		if _, err := e.ledger.RecordMovements(ctx, movements.Stock); err != nil {
			return err
		}

		doc.MarkPosted()
		if err := updateDoc(ctx); err != nil {
			return fmt.Errorf("update document: %w", err)
		}

		return e.audit(ctx, AuditActionPost, doc)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "document posted",
		"type", doc.GetDocumentType(),
		"id", doc.GetID(),
		"number", doc.GetNumber(),
		"movements", len(movements.Stock),
	)
	return nil
}

// Unpost reverses the document's movements and clears the posted flag.
func (e *Engine) Unpost(ctx context.Context, doc Postable, updateDoc func(ctx context.Context) error) error {
	if !doc.IsPosted() {
		return apperror.NewBusinessRule(
			apperror.CodeDocumentNotPosted,
			"Document is not posted",
		).WithDetail("document_id", doc.GetID().String())
	}

	err := e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := e.ledger.ReverseMovementsFor(ctx, doc.GetID()); err != nil {
			return err
		}

		doc.MarkUnposted()
		if err := updateDoc(ctx); err != nil {
			return fmt.Errorf("update document: %w", err)
		}

		return e.audit(ctx, AuditActionUnpost, doc)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "document unposted",
		"type", doc.GetDocumentType(),
		"id", doc.GetID(),
		"number", doc.GetNumber(),
	)
	return nil
}

// Repost re-records a posted document after an edit: reverse old
// movements, then apply the new set, all in one transaction. The ledger
// ends up as if the document had been posted in its edited form.
func (e *Engine) Repost(ctx context.Context, doc Postable, updateDoc func(ctx context.Context) error) error {
	if !doc.IsPosted() {
		return apperror.NewBusinessRule(
			apperror.CodeDocumentNotPosted,
			"Only posted documents can be reposted",
		).WithDetail("document_id", doc.GetID().String())
	}

	if err := doc.CanPost(ctx); err != nil {
		return err
	}

	movements, err := doc.GenerateMovements(ctx)
	if err != nil {
		return fmt.Errorf("generate movements: %w", err)
	}

	err = e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// Reversal first, so the stock check sees the balance without
		// this document's old movements
		if _, err := e.ledger.ReverseMovementsFor(ctx, doc.GetID()); err != nil {
			return err
		}

		if err := e.checkStock(ctx, movements); err != nil {
			return err
		}

		if _, err := e.ledger.RecordMovements(ctx, movements.Stock); err != nil {
			return err
		}

		doc.MarkPosted()
		if err := updateDoc(ctx); err != nil {
			return fmt.Errorf("update document: %w", err)
		}

		return e.audit(ctx, AuditActionRepost, doc)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "document reposted",
		"type", doc.GetDocumentType(),
		"id", doc.GetID(),
		"number", doc.GetNumber(),
		"posted_version", doc.GetPostedVersion(),
	)
	return nil
}

// checkStock validates outgoing quantities with row locks.
// Products are locked in ID order so concurrent posts can't deadlock.
func (e *Engine) checkStock(ctx context.Context, movements *MovementSet) error {
	outgoing := movements.OutgoingByProduct()
	if len(outgoing) == 0 {
		return nil
	}

	productIDs := make([]id.ID, 0, len(outgoing))
	for productID := range outgoing {
		productIDs = append(productIDs, productID)
	}
	sort.Slice(productIDs, func(i, j int) bool {
		return productIDs[i].String() < productIDs[j].String()
	})

	for _, productID := range productIDs {
		required := outgoing[productID]
		if !required.GreaterThan(decimal.Zero) {
			continue
		}
		if err := e.ledger.CheckStock(ctx, productID, required); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) audit(ctx context.Context, action AuditAction, doc Postable) error {
	if e.auditor == nil {
		return nil
	}
	payload := map[string]any{
		"number":         doc.GetNumber(),
		"posted_version": doc.GetPostedVersion(),
	}
	if err := e.auditor.Record(ctx, action, doc.GetDocumentType(), doc.GetID(), payload); err != nil {
		// Audit is best-effort metadata; a failed write must not
		// roll back the business transaction
		logger.Warn(ctx, "audit record failed",
			"action", string(action),
			"document_id", doc.GetID(),
			"error", err,
		)
	}
	return nil
}
