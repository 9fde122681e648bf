package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/librarium/librarium/auth"
	"github.com/librarium/librarium/storage"
)

type borrowRequest struct {
	BookISBN string `json:"book_isbn"`

	// UserID lets staff borrow on behalf of a member; everyone else borrows
	// for themselves.
	UserID string `json:"user_id"`
}

func (s *Server) handleBorrow(c *gin.Context) {
	actor, err := mustActor(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req borrowRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	memberID := actor.ID
	if req.UserID != "" && req.UserID != actor.ID {
		if err := s.auth.Gate().Authorize(&actor, auth.ActionManageLoans); err != nil {
			respondError(c, err)
			return
		}

		memberID = req.UserID
	}

	loan, err := s.lending.Borrow(c.Request.Context(), memberID, req.BookISBN)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, gin.H{"borrow": loan})
}

func (s *Server) handleGetLoan(c *gin.Context) {
	view, err := s.lending.LoanByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"borrow": view})
}

func (s *Server) handleReturn(c *gin.Context) {
	actor, err := mustActor(c)
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := s.lending.Return(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"borrow": view})
}

func (s *Server) handleOwnLoans(c *gin.Context) {
	actor, err := mustActor(c)
	if err != nil {
		respondError(c, err)
		return
	}

	views, err := s.lending.MemberLoans(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"borrows": views})
}

func (s *Server) handleOpenLoans(c *gin.Context) {
	search := storage.OpenLoanSearch{
		Page:       queryInt(c, "page"),
		PerPage:    queryInt(c, "per_page"),
		MemberName: c.Query("search"),
	}

	page, err := s.lending.OpenLoans(c.Request.Context(), search)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"borrows":      page.Items,
		"total":        page.TotalItems,
		"pages":        page.TotalPages,
		"current_page": page.Page,
		"per_page":     page.PerPage,
		"has_prev":     page.HasPrev,
		"has_next":     page.HasNext,
	})
}

func (s *Server) handleAllLoans(c *gin.Context) {
	views, err := s.lending.AllLoans(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"borrows": views})
}
