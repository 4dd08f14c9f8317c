package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/book-market-backend/internal/model"
	"github.com/shinyyama/book-market-backend/internal/service"
)

type WishlistHandler struct {
	svc service.WishlistService
}

func NewWishlistHandler(svc service.WishlistService) *WishlistHandler {
	return &WishlistHandler{svc: svc}
}

type wishlistRequest struct {
	BookID ID `json:"bookId"`
}

type WishlistResponse struct {
	Wishlist []BookResponse `json:"wishlist"`
}

type WishlistCheckResponse struct {
	InWishlist bool `json:"inWishlist"`
}

func toWishlistResponse(books []model.Book) WishlistResponse {
	resp := WishlistResponse{Wishlist: make([]BookResponse, 0, len(books))}
	for i := range books {
		resp.Wishlist = append(resp.Wishlist, toBookResponse(&books[i]))
	}
	return resp
}

func (h *WishlistHandler) List(c echo.Context) error {
	books, err := h.svc.List(c.Request().Context(), currentUID(c))
	if err != nil {
		return writeError(c, err, "error fetching wishlist")
	}
	return c.JSON(http.StatusOK, toWishlistResponse(books))
}

func (h *WishlistHandler) Add(c echo.Context) error {
	var req wishlistRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	books, err := h.svc.Add(c.Request().Context(), currentUID(c), uint64(req.BookID))
	if err != nil {
		return writeError(c, err, "error updating wishlist")
	}
	return c.JSON(http.StatusOK, toWishlistResponse(books))
}

func (h *WishlistHandler) Remove(c echo.Context) error {
	var req wishlistRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	books, err := h.svc.Remove(c.Request().Context(), currentUID(c), uint64(req.BookID))
	if err != nil {
		return writeError(c, err, "error updating wishlist")
	}
	return c.JSON(http.StatusOK, toWishlistResponse(books))
}

func (h *WishlistHandler) Check(c echo.Context) error {
	var req wishlistRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	in, err := h.svc.Check(c.Request().Context(), currentUID(c), uint64(req.BookID))
	if err != nil {
		return writeError(c, err, "error checking wishlist")
	}
	return c.JSON(http.StatusOK, WishlistCheckResponse{InWishlist: in})
}
