package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrClusterNotFound signals a missing cluster.
	ErrClusterNotFound = errors.New("cluster not found")
	// ErrNamespaceNotFound signals a namespace that has no clusters yet.
	ErrNamespaceNotFound = errors.New("namespace not found")
	// ErrInvalidNamespace signals a namespace name outside the allowed charset.
	ErrInvalidNamespace = errors.New("invalid namespace name")
	// ErrVectorDimMismatch signals an embedding dimension mismatch.
	// Input-contract violation: the call is rejected, never coerced.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmptyDocument signals a document with no id or no content.
	ErrEmptyDocument = errors.New("empty document")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrBatchTooLarge signals a recluster window above the configured cap.
	ErrBatchTooLarge = errors.New("batch too large")
)
