package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/book-market-backend/internal/model"
	"github.com/shinyyama/book-market-backend/internal/service"
)

type UserHandler struct {
	svc service.UserService
}

func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

type becomeSellerRequest struct {
	Telegram string `json:"telegram"`
	Location string `json:"location"`
}

type profileImageRequest struct {
	ImageURL string `json:"imageUrl"`
}

type ProfileImageResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

type WishlistSummary struct {
	ID        uint64  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	BookFront string  `json:"bookFront"`
}

type PublicUserResponse struct {
	ID       uint64            `json:"id"`
	Name     string            `json:"name"`
	Image    string            `json:"image"`
	Verified bool              `json:"verified"`
	Telegram string            `json:"telegram"`
	Location string            `json:"location"`
	Wishlist []WishlistSummary `json:"wishlist"`
}

func (h *UserHandler) BecomeSeller(c echo.Context) error {
	var req becomeSellerRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	sess, err := h.svc.BecomeSeller(c.Request().Context(), currentUID(c), req.Telegram, req.Location)
	if err != nil {
		return writeError(c, err, "server error while updating seller status")
	}
	return c.JSON(http.StatusOK, SessionResponse{
		Message: "Successfully became a seller",
		Token:   sess.Token,
		User:    toUserResponse(sess.User),
	})
}

func (h *UserHandler) SetProfileImage(c echo.Context) error {
	userID, ok := pathID(c, "userId")
	if !ok {
		return badRequest(c, "invalid user id")
	}
	var req profileImageRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	u, err := h.svc.SetProfileImage(c.Request().Context(), currentUID(c), userID, req.ImageURL)
	if err != nil {
		return writeError(c, err, "server error while updating profile image")
	}
	return c.JSON(http.StatusOK, ProfileImageResponse{Message: "Profile image updated", User: toUserResponse(u)})
}

func (h *UserHandler) GetPublic(c echo.Context) error {
	userID, ok := pathID(c, "userId")
	if !ok {
		return badRequest(c, "invalid user id")
	}
	p, err := h.svc.PublicProfile(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err, "failed to fetch user info")
	}
	return c.JSON(http.StatusOK, PublicUserResponse{
		ID:       p.User.ID,
		Name:     p.User.Name,
		Image:    p.User.Image,
		Verified: p.User.Verified,
		Telegram: p.User.Telegram,
		Location: p.User.Location,
		Wishlist: toWishlistSummaries(p.Wishlist),
	})
}

func toWishlistSummaries(books []model.Book) []WishlistSummary {
	out := make([]WishlistSummary, 0, len(books))
	for _, b := range books {
		out = append(out, WishlistSummary{ID: b.ID, Name: b.Name, Price: b.Price, BookFront: b.BookFront})
	}
	return out
}
