package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Sentinel errors for errors.Is matching on API failures.
var (
	// ErrClusterNotFound signals a missing cluster.
	ErrClusterNotFound = errors.New("cluster not found")
	// ErrNamespaceNotFound signals a namespace that has no clusters yet.
	ErrNamespaceNotFound = errors.New("namespace not found")
	// ErrValidation signals a rejected request (bad namespace, empty document,
	// dimension mismatch).
	ErrValidation = errors.New("validation failed")
	// ErrBatchTooLarge signals a recluster window above the server's cap.
	ErrBatchTooLarge = errors.New("batch too large")
	// ErrUnauthorized signals a missing or invalid API key.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrProviderUnavailable signals an embedding provider failure upstream.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")
)

// APIError is an error response from the topix API.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("topix api: %d %s: %s", e.Status, e.Code, e.Message)
}

// Is maps API error codes onto the package sentinels.
func (e *APIError) Is(target error) bool {
	if e.Status == http.StatusUnauthorized && target == ErrUnauthorized {
		return true
	}
	switch e.Code {
	case "cluster_not_found":
		return target == ErrClusterNotFound
	case "namespace_not_found":
		return target == ErrNamespaceNotFound
	case "batch_too_large":
		return target == ErrBatchTooLarge
	case "validation_failed", "vector_dim_mismatch", "bad_request":
		return target == ErrValidation
	case "embedding_provider_error":
		return target == ErrProviderUnavailable
	}
	return false
}

func parseAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || json.Unmarshal(body, apiErr) != nil || apiErr.Code == "" {
		apiErr.Code = "unknown"
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
