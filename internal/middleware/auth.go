package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/book-market-backend/internal/handler"
	"github.com/shinyyama/book-market-backend/internal/reqctx"
	"github.com/shinyyama/book-market-backend/internal/service"
)

type AuthMiddleware struct {
	auth service.AuthService
}

func NewAuthMiddleware(auth service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized", msg))
}

// RequireAuth rejects requests without a current bearer token and stores
// the caller under "uid", "user" and "claims".
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenStr, ok := bearerToken(c.Request().Header.Get("Authorization"))
		if !ok {
			return unauthorized(c, "no token provided")
		}
		claims, user, err := m.auth.Authenticate(c.Request().Context(), tokenStr)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				return unauthorized(c, "invalid token")
			}
			c.Set("handler_error", err.Error())
			return c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("internal_error", "failed to authenticate"))
		}
		c.Set("uid", user.ID)
		c.Set("user", user)
		c.Set("claims", claims)
		req := c.Request()
		c.SetRequest(req.WithContext(reqctx.WithUID(req.Context(), user.ID)))
		return next(c)
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	tok := strings.TrimSpace(parts[1])
	return tok, tok != ""
}
