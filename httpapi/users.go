package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/librarium/librarium/auth"
	"github.com/librarium/librarium/core"
)

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Role     *string `json:"role"`
	Password string  `json:"password"`
}

func (s *Server) handleListUsers(c *gin.Context) {
	users, err := s.auth.Users(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"users": users})
}

func (s *Server) handleCreateUser(c *gin.Context) {
	actor, err := mustActor(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req createUserRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	role := core.RoleMember
	if req.Role != "" {
		role, err = core.ParseRole(req.Role)
		if err != nil {
			respondError(c, err)
			return
		}
	}

	user, err := s.auth.CreateUser(c.Request.Context(), actor, req.Name, req.Email, req.Password, role)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, gin.H{"user": user})
}

func (s *Server) handleGetUser(c *gin.Context) {
	user, err := s.auth.User(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"user": user})
}

func (s *Server) handleUpdateUser(c *gin.Context) {
	actor, err := mustActor(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req updateUserRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	update := auth.UserUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}

	if req.Role != nil {
		role, parseErr := core.ParseRole(*req.Role)
		if parseErr != nil {
			respondError(c, parseErr)
			return
		}

		update.Role = &role
	}

	user, err := s.auth.UpdateUser(c.Request.Context(), actor, c.Param("id"), update)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"user": user})
}

func (s *Server) handleDeleteUser(c *gin.Context) {
	actor, err := mustActor(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := s.auth.DeleteUser(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"deleted": c.Param("id")})
}
