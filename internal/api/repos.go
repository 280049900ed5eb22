package api

import (
	"net/http"

	"github-repo-scorer/internal/logging"
)

func (h *Handler) handleGetAllRepos(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r.URL.Query())
	if err != nil {
		writeAppError(w, err, "")
		return
	}

	repos, err := h.repos.FetchAllRepositories(r.Context(), q.Language, q.Created, q.Pagination, q.Excluded)
	if err != nil {
		logging.FromContext(r.Context(), h.logger).WithError(err).Error("getAllRepos failed")
		writeAppError(w, err, "Error fetching repositories")
		return
	}

	writeJSON(w, http.StatusOK, repos)
}

func (h *Handler) handleGetRepoInfo(w http.ResponseWriter, r *http.Request) {
	excluded, err := parseRepoInfoQuery(r.URL.Query())
	if err != nil {
		writeAppError(w, err, "")
		return
	}

	owner := r.PathValue("username")
	name := r.PathValue("repositoryName")

	info, err := h.repos.FetchRepositoryInfo(r.Context(), owner, name, excluded)
	if err != nil {
		logging.FromContext(r.Context(), h.logger).WithError(err).Error("getRepoInfo failed")
		writeAppError(w, err, "Error fetching repository data")
		return
	}

	writeJSON(w, http.StatusOK, info)
}
