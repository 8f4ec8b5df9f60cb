package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinicgate/clinicgate/internal/router"
	"github.com/clinicgate/clinicgate/internal/session"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserDetail represents the session user in responses
type UserDetail struct {
	Role   string `json:"role"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// SessionResponse describes the current session
type SessionResponse struct {
	Authenticated bool        `json:"authenticated"`
	User          *UserDetail `json:"user,omitempty"`
	Home          string      `json:"home,omitempty"`
}

// ResultResponse is a store Result on the wire
type ResultResponse struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
	Kind    string         `json:"kind,omitempty"`
}

func toUserDetail(u session.User) *UserDetail {
	return &UserDetail{
		Role:   u.RawRole,
		UserID: u.UserID,
		Name:   u.Name,
	}
}

// respondResult writes a Result with a status that reflects its failure kind
func respondResult(c *gin.Context, result session.Result) {
	resp := ResultResponse{
		Success: result.Success,
		Data:    result.Data,
	}

	if result.Failure == nil {
		c.JSON(http.StatusOK, resp)
		return
	}

	resp.Error = result.Failure.Message
	resp.Kind = result.Failure.Kind.String()

	status := http.StatusBadGateway
	if result.Failure.Kind == session.ErrorKindRejected &&
		result.Failure.Status >= 400 && result.Failure.Status < 500 {
		status = result.Failure.Status
	}
	c.JSON(status, resp)
}

func (s *Server) getSession(c *gin.Context) {
	user, ok := s.store.CurrentUser()
	if !ok {
		c.JSON(http.StatusOK, SessionResponse{Authenticated: false})
		return
	}

	c.JSON(http.StatusOK, SessionResponse{
		Authenticated: true,
		User:          toUserDetail(user),
		Home:          router.HomePath(user),
	})
}

func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResultResponse{Error: "Username and password required"})
		return
	}

	respondResult(c, s.store.Login(c.Request.Context(), req.Username, req.Password))
}

func (s *Server) register(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, ResultResponse{Error: "Invalid request body"})
		return
	}

	respondResult(c, s.store.Register(c.Request.Context(), payload))
}

func (s *Server) logout(c *gin.Context) {
	respondResult(c, s.store.Logout(c.Request.Context()))
}
