package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/topix/internal/domain"
	domclu "github.com/kailas-cloud/topix/internal/domain/cluster"
	domdoc "github.com/kailas-cloud/topix/internal/domain/document"
	assignuc "github.com/kailas-cloud/topix/internal/usecase/assign"
	healthuc "github.com/kailas-cloud/topix/internal/usecase/health"
	recluseruc "github.com/kailas-cloud/topix/internal/usecase/recluster"
)

// errorCode is a machine-readable error identifier in API responses.
type errorCode string

const (
	codeBadRequest        errorCode = "bad_request"
	codeValidationFailed  errorCode = "validation_failed"
	codeNamespaceNotFound errorCode = "namespace_not_found"
	codeClusterNotFound   errorCode = "cluster_not_found"
	codeBatchTooLarge     errorCode = "batch_too_large"
	codeVectorDimMismatch errorCode = "vector_dim_mismatch"
	codeEmbeddingProvider errorCode = "embedding_provider_error"
	codeInternalError     errorCode = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the clustering engine over HTTP.
type Server struct {
	assign        *assignuc.Service
	recluster     *recluseruc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	assign *assignuc.Service,
	recluster *recluseruc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		assign:    assign,
		recluster: recluster,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidNamespace, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrEmptyDocument, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, codeVectorDimMismatch),
		sentinelHandler(domain.ErrBatchTooLarge, http.StatusBadRequest, codeBatchTooLarge),
		sentinelHandler(domain.ErrClusterNotFound, http.StatusNotFound, codeClusterNotFound),
		sentinelHandler(domain.ErrNamespaceNotFound, http.StatusNotFound, codeNamespaceNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeClusterNotFound),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProvider),
	}
	return s
}

// Routes mounts all API handlers on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/api/v1/namespaces/{namespace}", func(r chi.Router) {
		r.Post("/documents", s.AssignDocument)
		r.Post("/recluster", s.Recluster)
		r.Get("/clusters", s.ListClusters)
		r.Get("/clusters/{cluster}", s.GetCluster)
	})
}

type assignRequest struct {
	ID        string    `json:"id"`
	Text      string    `json:"text,omitempty"`
	Embedding []float32 `json:"embedding,omitempty"`
}

type assignResponse struct {
	ClusterID string  `json:"cluster_id"`
	Created   bool    `json:"created"`
	Distance  float64 `json:"distance"`
}

// AssignDocument handles POST /api/v1/namespaces/{namespace}/documents.
func (s *Server) AssignDocument(w http.ResponseWriter, r *http.Request) {
	ns := chi.URLParam(r, "namespace")

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	doc, err := documentFromAssign(req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	res, err := s.assign.AssignDocument(r.Context(), ns, doc)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
		w.Header().Set("Location",
			fmt.Sprintf("/api/v1/namespaces/%s/clusters/%s", ns, res.ClusterID))
	}

	writeJSON(w, status, assignResponse{
		ClusterID: res.ClusterID,
		Created:   res.Created,
		Distance:  float64(res.Distance),
	})
}

type reclusterDocument struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type reclusterRequest struct {
	Documents []reclusterDocument `json:"documents"`
}

type groupResponse struct {
	ID      string   `json:"id"`
	Members []string `json:"members"`
	Size    int      `json:"size"`
}

type reclusterResponse struct {
	Groups []groupResponse `json:"groups"`
	Total  int             `json:"total"`
}

// Recluster handles POST /api/v1/namespaces/{namespace}/recluster.
func (s *Server) Recluster(w http.ResponseWriter, r *http.Request) {
	ns := chi.URLParam(r, "namespace")

	var req reclusterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	docs := make([]domdoc.Document, 0, len(req.Documents))
	for _, item := range req.Documents {
		doc, err := domdoc.New(item.ID, item.Text)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed,
				fmt.Sprintf("document %q: %s", item.ID, safeDomainMessage(err)))
			return
		}
		docs = append(docs, doc)
	}

	groups, err := s.recluster.Recluster(r.Context(), ns, docs)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]groupResponse, len(groups))
	for i := range groups {
		items[i] = groupToResponse(&groups[i])
	}

	writeJSON(w, http.StatusOK, reclusterResponse{
		Groups: items,
		Total:  len(items),
	})
}

type clusterResponse struct {
	ID       string    `json:"id"`
	Size     int       `json:"size"`
	Centroid []float32 `json:"centroid,omitempty"`
}

type clusterListResponse struct {
	Items []clusterResponse `json:"items"`
	Total int               `json:"total"`
}

// ListClusters handles GET /api/v1/namespaces/{namespace}/clusters.
// Centroids are omitted unless include_centroids=true (they are wide).
func (s *Server) ListClusters(w http.ResponseWriter, r *http.Request) {
	ns := chi.URLParam(r, "namespace")
	includeCentroids := r.URL.Query().Get("include_centroids") == "true"

	clusters, err := s.assign.ListClusters(r.Context(), ns)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]clusterResponse, len(clusters))
	for i := range clusters {
		items[i] = clusterToResponse(&clusters[i], includeCentroids)
	}

	writeJSON(w, http.StatusOK, clusterListResponse{
		Items: items,
		Total: len(items),
	})
}

// GetCluster handles GET /api/v1/namespaces/{namespace}/clusters/{cluster}.
func (s *Server) GetCluster(w http.ResponseWriter, r *http.Request) {
	ns := chi.URLParam(r, "namespace")
	id := chi.URLParam(r, "cluster")

	cluster, err := s.assign.GetCluster(r.Context(), ns, id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, clusterToResponse(&cluster, true))
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func documentFromAssign(req assignRequest) (domdoc.Document, error) {
	if req.Text == "" {
		return domdoc.NewEmbedded(req.ID, req.Embedding)
	}

	doc, err := domdoc.New(req.ID, req.Text)
	if err != nil {
		return domdoc.Document{}, err
	}
	if len(req.Embedding) > 0 {
		doc = doc.WithEmbedding(req.Embedding)
	}
	return doc, nil
}

func clusterToResponse(c *domclu.Cluster, includeCentroid bool) clusterResponse {
	resp := clusterResponse{
		ID:   c.ID(),
		Size: c.Size(),
	}
	if includeCentroid {
		resp.Centroid = c.Centroid()
	}
	return resp
}

func groupToResponse(g *domclu.Group) groupResponse {
	return groupResponse{
		ID:      g.ID(),
		Members: g.Members(),
		Size:    g.Size(),
	}
}

type jsonError struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, jsonError{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidNamespace,
		domain.ErrEmptyDocument,
		domain.ErrVectorDimMismatch,
		domain.ErrBatchTooLarge,
		domain.ErrClusterNotFound,
		domain.ErrNamespaceNotFound,
		domain.ErrNotFound,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
