package purchase

import "stocklot/internal/core/numerator"

const (
	// NumeratorStrategy defines the numbering strategy for this document type.
	// Purchases are internal receipts, gaps are acceptable.
	NumeratorStrategy = numerator.StrategyCached

	// NumberPrefix for generated purchase numbers (PO-2026-00001).
	NumberPrefix = "PO"
)
