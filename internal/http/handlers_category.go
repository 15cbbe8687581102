package http

import (
	"errors"
	"log/slog"
	"net/http"

	"finanzas/internal/core"
	"finanzas/internal/storage"
)

type categoryRequest struct {
	Name    string `json:"name"`
	Color   string `json:"color"`
	IsFixed bool   `json:"is_fixed"`
}

type categoryResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Value   string `json:"value"`
	Color   string `json:"color"`
	IsFixed bool   `json:"is_fixed"`
}

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{
		ID:      c.ID,
		Name:    c.Name,
		Value:   c.Value,
		Color:   c.Color,
		IsFixed: c.IsFixed,
	}
}

func parseCategoryRequest(req categoryRequest, userID int64) (core.Category, error) {
	c := core.Category{
		UserID:  userID,
		Name:    sanitizeInput(req.Name),
		Color:   sanitizeInput(req.Color),
		IsFixed: req.IsFixed,
	}
	c.Normalize()
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	return c, nil
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	fixed, err := fixedFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	categories, err := s.repo.ListCategories(r.Context(), UserID(r), fixed)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list categories", "error", err)
		writeError(w, http.StatusInternalServerError, "an error occurred, please try again")
		return
	}

	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	category, err := parseCategoryRequest(req, UserID(r))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	saved, err := s.repo.CreateCategory(r.Context(), category)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to create category", "error", err)
		writeError(w, http.StatusInternalServerError, "an error occurred, please try again")
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(saved))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	category, err := parseCategoryRequest(req, UserID(r))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	category.ID = id

	if err := s.repo.UpdateCategory(r.Context(), category); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to update category", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "an error occurred, please try again")
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.repo.DeleteCategory(r.Context(), id, UserID(r)); err != nil {
		switch {
		case errors.Is(err, storage.ErrCategoryInUse):
			writeError(w, http.StatusConflict, "category is referenced by existing expenses")
		case errors.Is(err, storage.ErrNotFound):
			writeError(w, http.StatusNotFound, "category not found")
		default:
			slog.ErrorContext(r.Context(), "Failed to delete category", "error", err, "id", id)
			writeError(w, http.StatusInternalServerError, "an error occurred, please try again")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
