package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/librarium/librarium/core"
)

type nameRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListAuthors(c *gin.Context) {
	authors, err := s.catalog.Authors(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"authors": authors})
}

func (s *Server) handleCreateAuthor(c *gin.Context) {
	var req nameRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	author, err := s.catalog.CreateAuthor(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, gin.H{"author": author})
}

func (s *Server) handleRenameAuthor(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req nameRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	author, err := s.catalog.RenameAuthor(c.Request.Context(), id, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"author": author})
}

func (s *Server) handleDeleteAuthor(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := s.catalog.DeleteAuthor(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"deleted": id})
}

func (s *Server) handleListCategories(c *gin.Context) {
	categories, err := s.catalog.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"categories": categories})
}

func (s *Server) handleCreateCategory(c *gin.Context) {
	var req nameRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	category, err := s.catalog.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, gin.H{"category": category})
}

func (s *Server) handleRenameCategory(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req nameRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	category, err := s.catalog.RenameCategory(c.Request.Context(), id, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"category": category})
}

func (s *Server) handleDeleteCategory(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := s.catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"deleted": id})
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: id must be numeric", core.ErrValidation)
	}

	return id, nil
}
