package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/markazhub/markaz/core/navigation"
	"github.com/markazhub/markaz/core/session"
	"github.com/markazhub/markaz/core/user"
)

type navigationApi struct {
	guard    *navigation.Guard
	sessions *session.Store
}

func registerNavigationAPI(g *echo.Group, optionalJWT echo.MiddlewareFunc, sessions *session.Store) {
	api := navigationApi{
		guard:    navigation.NewGuard(),
		sessions: sessions,
	}

	ng := g.Group("/navigation")
	ng.POST("/resolve", api.resolve, optionalJWT)

	sg := g.Group("/session")
	sg.POST("/clear", api.clearSession)
}

type (
	ResolveRequest struct {
		Path string `json:"path"`
	}

	ResolveResponse struct {
		Action         string `json:"action"` // "render" | "redirect"
		View           string `json:"view,omitempty"`
		Shell          string `json:"shell,omitempty"`
		RedirectTo     string `json:"redirect_to,omitempty"`
		ReplaceHistory bool   `json:"replace_history,omitempty"`
		PreservedPath  string `json:"preserved_path,omitempty"`
	}
)

// resolve answers "what should the client do with this path" for the caller's
// role; anonymous callers resolve as guests.
func (api *navigationApi) resolve(ctx echo.Context) error {
	var data ResolveRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResolveRequest")
	}

	role := navigation.RoleGuest
	var loggedIn bool
	if claims, err := getContextClaims(ctx); err == nil {
		usr := user.User{Roles: claims.Roles}
		role = usr.PrimaryRole()
		loggedIn = true
	}

	decision := api.guard.Resolve(data.Path, role, loggedIn)

	resp := ResolveResponse{
		View:           decision.View,
		Shell:          string(decision.Shell),
		RedirectTo:     decision.RedirectTo,
		ReplaceHistory: decision.ReplaceHistory,
		PreservedPath:  decision.PreservedPath,
	}
	switch decision.Kind {
	case navigation.DecisionRender:
		resp.Action = "render"
	default:
		resp.Action = "redirect"
	}
	return ctx.JSON(http.StatusOK, resp)
}

// clearSession is the "clear session and start over" recovery action: it
// tears the session down and drops the persisted blob regardless of state.
func (api *navigationApi) clearSession(ctx echo.Context) error {
	if err := api.sessions.Logout(); err != nil {
		return errors.Wrap(err, "clearing session")
	}
	return ctx.NoContent(http.StatusNoContent)
}
