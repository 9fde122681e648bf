package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/librarium/librarium/catalog"
	"github.com/librarium/librarium/core"
	"github.com/librarium/librarium/storage"
)

type bookRequest struct {
	ISBN        string  `json:"isbn"`
	Title       *string `json:"title"`
	AuthorID    *int64  `json:"author_id"`
	CategoryID  *int64  `json:"category_id"`
	TotalCopies *int    `json:"total_copies"`
	Cover       *string `json:"cover"`
	Description *string `json:"description"`
}

func (s *Server) handleSearchBooks(c *gin.Context) {
	search := storage.BookSearch{
		Page:     queryInt(c, "page"),
		PerPage:  queryInt(c, "per_page"),
		Title:    c.Query("title"),
		Author:   c.Query("author"),
		Category: c.Query("category"),
	}

	page, err := s.catalog.Search(c.Request.Context(), search)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"books":        page.Items,
		"total":        page.TotalItems,
		"pages":        page.TotalPages,
		"current_page": page.Page,
		"per_page":     page.PerPage,
		"has_prev":     page.HasPrev,
		"has_next":     page.HasNext,
	})
}

func (s *Server) handleGetBook(c *gin.Context) {
	details, err := s.catalog.Book(c.Request.Context(), c.Param("isbn"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"book": details})
}

func (s *Server) handleCreateBook(c *gin.Context) {
	var req bookRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	book := core.Book{ISBN: req.ISBN}

	if req.Title != nil {
		book.Title = *req.Title
	}

	if req.AuthorID != nil {
		book.AuthorID = *req.AuthorID
	}

	if req.CategoryID != nil {
		book.CategoryID = *req.CategoryID
	}

	if req.TotalCopies != nil {
		book.TotalCopies = *req.TotalCopies
	}

	if req.Cover != nil {
		book.Cover = *req.Cover
	}

	if req.Description != nil {
		book.Description = *req.Description
	}

	details, err := s.catalog.CreateBook(c.Request.Context(), book)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, gin.H{"book": details})
}

func (s *Server) handleImportBook(c *gin.Context) {
	var record catalog.ImportRecord
	if err := bindJSON(c, &record); err != nil {
		respondError(c, err)
		return
	}

	details, err := s.catalog.Import(c.Request.Context(), record)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, gin.H{"book": details})
}

func (s *Server) handleUpdateBook(c *gin.Context) {
	var req bookRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	update := storage.BookUpdate{
		Title:       req.Title,
		AuthorID:    req.AuthorID,
		CategoryID:  req.CategoryID,
		TotalCopies: req.TotalCopies,
		Cover:       req.Cover,
		Description: req.Description,
	}

	details, err := s.catalog.UpdateBook(c.Request.Context(), c.Param("isbn"), update)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"book": details})
}

func (s *Server) handleDeleteBook(c *gin.Context) {
	if err := s.catalog.DeleteBook(c.Request.Context(), c.Param("isbn")); err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"deleted": c.Param("isbn")})
}

// queryInt parses an optional numeric query parameter, 0 when absent or
// malformed; the search normalization applies the defaults.
func queryInt(c *gin.Context, name string) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}

	return value
}
