package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/book-market-backend/internal/auth"
	"github.com/shinyyama/book-market-backend/internal/model"
	"github.com/shinyyama/book-market-backend/internal/service"
)

type AuthHandler struct {
	svc service.AuthService
}

func NewAuthHandler(svc service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type UserResponse struct {
	ID       uint64     `json:"id"`
	Name     string     `json:"name"`
	Email    string     `json:"email,omitempty"`
	Image    string     `json:"image,omitempty"`
	Role     model.Role `json:"role"`
	Verified bool       `json:"verified"`
	Telegram string     `json:"telegram,omitempty"`
	Location string     `json:"location,omitempty"`
}

func toUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Image:    u.Image,
		Role:     u.Role,
		Verified: u.Verified,
		Telegram: u.Telegram,
		Location: u.Location,
	}
}

type SessionResponse struct {
	Message string       `json:"message,omitempty"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

type ClaimResponse struct {
	ID        uint64     `json:"id"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	ExpiresAt string     `json:"expiresAt,omitempty"`
}

type VerifyResponse struct {
	Valid  bool          `json:"valid"`
	Claims ClaimResponse `json:"claims"`
	User   UserResponse  `json:"user"`
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	sess, err := h.svc.Signup(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return writeError(c, err, "server error during signup")
	}
	return c.JSON(http.StatusCreated, SessionResponse{
		Message: "User created successfully",
		Token:   sess.Token,
		User:    toUserResponse(sess.User),
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	sess, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err, "server error during login")
	}
	return c.JSON(http.StatusOK, SessionResponse{Token: sess.Token, User: toUserResponse(sess.User)})
}

func (h *AuthHandler) Verify(c echo.Context) error {
	claims, _ := c.Get("claims").(*auth.Claims)
	user, _ := c.Get("user").(*model.User)
	if claims == nil || user == nil {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing session"))
	}
	resp := VerifyResponse{
		Valid: true,
		Claims: ClaimResponse{
			ID:    claims.ID,
			Email: claims.Email,
			Role:  claims.Role,
		},
		User: toUserResponse(user),
	}
	if claims.ExpiresAt != nil {
		resp.Claims.ExpiresAt = claims.ExpiresAt.Time.Format(time.RFC3339)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.svc.Logout(c.Request().Context(), currentUID(c)); err != nil {
		return writeError(c, err, "server error during logout")
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}
