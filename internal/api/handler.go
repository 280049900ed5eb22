// Package api 对外的 REST 接口：参数校验、错误映射与中间件
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github-repo-scorer/internal/common"
	"github-repo-scorer/internal/domain"
	"github-repo-scorer/internal/logging"

	"github.com/sirupsen/logrus"
)

// 错误响应中的 name 字段
const (
	ErrNameInvalidRequest = "INVALID_REQUEST"
	ErrNameNotFound       = "NOT_FOUND"
	ErrNameInternal       = "INTERNAL_SERVER_ERROR"
)

// RepositoryFetcher 由 service.RepositoryService 实现
type RepositoryFetcher interface {
	FetchAllRepositories(ctx context.Context, language, createdAfter string, page domain.Pagination, excluded domain.Exclusions) ([]domain.ScoredRepository, error)
	FetchRepositoryInfo(ctx context.Context, owner, name string, excluded domain.Exclusions) (domain.ScoredRepositoryWithDrift, error)
}

// Handler 顶层 HTTP handler
type Handler struct {
	repos  RepositoryFetcher
	logger logrus.FieldLogger
}

// NewHandler 创建 handler
func NewHandler(repos RepositoryFetcher, logger logrus.FieldLogger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{repos: repos, logger: logger}
}

// RegisterRoutes 注册所有路由，未匹配的路径返回 JSON 404
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/getAllRepos", h.handleGetAllRepos)
	mux.HandleFunc("GET /api/v1/{username}/{repositoryName}/getRepoInfo", h.handleGetRepoInfo)
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("/", h.handleNotFound)
}

// Routes 返回挂好中间件的完整 handler
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return CORS(CorrelationID(h.logger)(RequestLogger(mux)))
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	logging.FromContext(r.Context(), h.logger).
		WithField("path", r.URL.Path).
		Warn("Resource not found")
	writeError(w, http.StatusNotFound, ErrNameNotFound, "Resource not found")
}

// errorBody 错误响应体
type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, name, msg string) {
	writeJSON(w, status, errorBody{StatusCode: status, Name: name, Message: msg})
}

// writeAppError 按错误码映射 HTTP 状态，上游或未知错误统一返回 500 与 fallback 文案
func writeAppError(w http.ResponseWriter, err error, fallback string) {
	switch common.CodeOf(err) {
	case common.ErrCodeInvalidInput:
		writeError(w, http.StatusBadRequest, ErrNameInvalidRequest, messageOf(err))
	case common.ErrCodeNotFound:
		writeError(w, http.StatusNotFound, ErrNameNotFound, messageOf(err))
	default:
		writeError(w, http.StatusInternalServerError, ErrNameInternal, fallback)
	}
}

func messageOf(err error) string {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
