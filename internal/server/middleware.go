package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/clinicgate/clinicgate/internal/router"
)

const routeKey = "route"

// GuardMiddleware runs the navigation guard for one route and answers
// with a redirect when the guard says so
func GuardMiddleware(guard *router.Guard, route *router.Route, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := guard.Decide(route)
		if decision.Outcome == router.Redirect {
			log.Debug().
				Str("route", route.Name).
				Str("path", c.Request.URL.Path).
				Str("to", decision.To).
				Str("reason", string(decision.Reason)).
				Msg("Navigation redirected")
			c.Redirect(http.StatusFound, decision.To)
			c.Abort()
			return
		}

		c.Set(routeKey, route)
		c.Next()
	}
}

// GetRoute returns the route the guard admitted the request to
func GetRoute(c *gin.Context) (*router.Route, bool) {
	v, exists := c.Get(routeKey)
	if !exists {
		return nil, false
	}

	route, ok := v.(*router.Route)
	return route, ok
}

func staticRedirect(to string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Redirect(http.StatusFound, to)
	}
}
