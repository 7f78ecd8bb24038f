package sale

import "stocklot/internal/core/numerator"

const (
	// NumeratorStrategy defines the numbering strategy for this document type.
	// Sale is a primary accounting document, so we use Strict strategy.
	NumeratorStrategy = numerator.StrategyStrict

	// NumberPrefix for generated sale numbers (SI-2026-00001).
	NumberPrefix = "SI"
)
