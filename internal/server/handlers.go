package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/kensaku/internal/models"
	"github.com/hyperjump/kensaku/internal/session"
	"github.com/hyperjump/kensaku/internal/storage"
	"go.uber.org/zap"
)

type searchRequest struct {
	Query     string `json:"query"`
	Immediate bool   `json:"immediate"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if v, err := strconv.ParseBool(r.URL.Query().Get("immediate")); err == nil {
		req.Immediate = v
	}
	s.logger.Debug("search request", zap.String("query", req.Query), zap.Bool("immediate", req.Immediate))
	if err := s.session.SubmitQuery(req.Query); err != nil {
		s.respondSessionError(w, err)
		return
	}
	if !req.Immediate {
		s.respondJSON(w, http.StatusAccepted, map[string]string{"status": "scheduled"})
		return
	}
	resp, err := s.session.Flush()
	if err != nil {
		s.respondSessionError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	s.respondLast(w)
}

type sortRequest struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

func (s *Server) handleSetSort(w http.ResponseWriter, r *http.Request) {
	var req sortRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	resp, err := s.session.SetSort(models.ParseSortField(req.Field), models.ParseSortDirection(req.Direction))
	s.respondMutation(w, resp, err)
}

type filtersResponse struct {
	Filters models.Filters `json:"filters"`
	Sort    models.Sort    `json:"sort"`
}

func (s *Server) handleGetFilters(w http.ResponseWriter, r *http.Request) {
	f, err := s.session.Filters()
	if err != nil {
		s.respondSessionError(w, err)
		return
	}
	so, err := s.session.Sort()
	if err != nil {
		s.respondSessionError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, filtersResponse{Filters: f, Sort: so})
}

func (s *Server) handleClearFilters(w http.ResponseWriter, r *http.Request) {
	resp, err := s.session.ClearFilters()
	s.respondMutation(w, resp, err)
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	resp, err := s.session.AddCategoryFilter(chi.URLParam(r, "value"))
	s.respondMutation(w, resp, err)
}

func (s *Server) handleRemoveCategory(w http.ResponseWriter, r *http.Request) {
	resp, err := s.session.RemoveCategoryFilter(chi.URLParam(r, "value"))
	s.respondMutation(w, resp, err)
}

func (s *Server) handleAddTag(w http.ResponseWriter, r *http.Request) {
	resp, err := s.session.AddTagFilter(chi.URLParam(r, "value"))
	s.respondMutation(w, resp, err)
}

func (s *Server) handleRemoveTag(w http.ResponseWriter, r *http.Request) {
	resp, err := s.session.RemoveTagFilter(chi.URLParam(r, "value"))
	s.respondMutation(w, resp, err)
}

func (s *Server) handleSetAuthor(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Author string `json:"author"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	resp, err := s.session.SetAuthorFilter(body.Author)
	s.respondMutation(w, resp, err)
}

type dateRangeRequest struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (s *Server) handleSetDateRange(w http.ResponseWriter, r *http.Request) {
	var req dateRangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	resp, err := s.session.SetDateRangeFilter(req.Start, req.End)
	s.respondMutation(w, resp, err)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	suggestions, err := s.session.GetSuggestions(r.URL.Query().Get("q"), limit)
	if err != nil {
		s.respondSessionError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"suggestions": suggestions})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	history, err := s.session.GetSearchHistory(limit)
	if err != nil {
		s.respondSessionError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"history": history})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.session.ClearHistory(); err != nil {
		s.respondSessionError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.session.GetSearchStats()
	if err != nil {
		s.respondSessionError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleResetStats(w http.ResponseWriter, r *http.Request) {
	if err := s.session.ResetStats(); err != nil {
		s.respondSessionError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.session.ExportJSON()
	if err != nil {
		s.respondSessionError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="search-export.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	if !s.requireStorage(w) {
		return
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	articles, err := s.storage.ListArticles(r.Context(), offset, limit)
	if err != nil {
		s.logger.Error("list articles failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if articles == nil {
		articles = []*models.Article{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"articles": articles})
}

func (s *Server) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	if !s.requireStorage(w) {
		return
	}
	var a models.Article
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("create article request", zap.String("id", a.ID), zap.String("title", a.Title))
	if err := s.storage.UpsertArticle(r.Context(), &a); err != nil {
		s.logger.Error("storing article failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.reindex(r.Context()); err != nil {
		s.logger.Error("reindex failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"id": a.ID, "status": "indexed"})
}

func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	if !s.requireStorage(w) {
		return
	}
	a, err := s.storage.GetArticle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondStorageError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, a)
}

func (s *Server) handleDeleteArticle(w http.ResponseWriter, r *http.Request) {
	if !s.requireStorage(w) {
		return
	}
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete article request", zap.String("id", id))
	if err := s.storage.DeleteArticle(r.Context(), id); err != nil {
		s.respondStorageError(w, err)
		return
	}
	if err := s.reindex(r.Context()); err != nil {
		s.logger.Error("reindex failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleIncrementViews(w http.ResponseWriter, r *http.Request) {
	if !s.requireStorage(w) {
		return
	}
	if err := s.storage.IncrementViews(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondStorageError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "counted"})
}

func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	if s.reload == nil && !s.requireStorage(w) {
		return
	}
	if err := s.reindex(r.Context()); err != nil {
		s.logger.Error("reindex failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"status": "reindexed", "documents": s.indexer.Len()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"documents": s.indexer.Len(),
	}
	if st, err := s.session.State(); err == nil {
		resp["state"] = st.String()
	}
	if s.storage != nil {
		n, err := s.storage.CountArticles(r.Context())
		if err != nil {
			s.logger.Error("status: count articles failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp["articles"] = n
		if sized, ok := s.storage.(interface{ SizeBytes() (int64, error) }); ok {
			if size, err := sized.SizeBytes(); err == nil {
				resp["disk_usage_bytes"] = size
			}
		}
	}
	if s.watch != nil {
		resp["watch_directories"] = s.watch.Directories()
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// respondMutation answers a filter or sort change with the response it published.
func (s *Server) respondMutation(w http.ResponseWriter, resp *models.SearchResponse, err error) {
	if err != nil {
		s.respondSessionError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondLast(w http.ResponseWriter) {
	resp, err := s.session.LastResponse()
	if err != nil {
		s.respondSessionError(w, err)
		return
	}
	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) requireStorage(w http.ResponseWriter) bool {
	if s.storage == nil {
		s.respondError(w, http.StatusNotImplemented, "article storage not configured")
		return false
	}
	return true
}

func (s *Server) respondSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrInvalidDateRange):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrClosed), errors.Is(err, session.ErrNoSession):
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error("session request failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) respondStorageError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "article not found")
		return
	}
	s.logger.Error("storage request failed", zap.Error(err))
	s.respondError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
