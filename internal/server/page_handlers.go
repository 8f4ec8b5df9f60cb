package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PageResponse describes the page a navigation landed on. Rendering the
// page itself is the frontend's job.
type PageResponse struct {
	Page   string            `json:"page"`
	Path   string            `json:"path"`
	Params map[string]string `json:"params"`
	User   *UserDetail       `json:"user,omitempty"`
}

// page must run behind GuardMiddleware, which sets the route
func (s *Server) page(c *gin.Context) {
	route, ok := GetRoute(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	params := map[string]string{}
	for _, name := range route.Params() {
		params[name] = c.Param(name)
	}

	resp := PageResponse{
		Page:   route.Name,
		Path:   c.Request.URL.Path,
		Params: params,
	}
	if user, ok := s.store.CurrentUser(); ok {
		resp.User = toUserDetail(user)
	}

	c.JSON(http.StatusOK, resp)
}
