package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/book-market-backend/internal/service"
)

type PaymentHandler struct {
	svc service.PaymentService
}

func NewPaymentHandler(svc service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

type paymentRequest struct {
	BookID        ID      `json:"bookId"`
	SellerID      ID      `json:"sellerId"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"paymentMethod"`
}

type PaymentResponse struct {
	Message   string `json:"message"`
	PaymentID uint64 `json:"paymentId"`
}

type PaidResponse struct {
	Paid bool `json:"paid"`
}

type HasPaidResponse struct {
	HasPaid bool `json:"hasPaid"`
}

func (h *PaymentHandler) Create(c echo.Context) error {
	var req paymentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	p, err := h.svc.Record(c.Request().Context(), currentUID(c), uint64(req.BookID), uint64(req.SellerID), req.Amount, req.PaymentMethod)
	if err != nil {
		return writeError(c, err, "payment failed")
	}
	return c.JSON(http.StatusOK, PaymentResponse{Message: "Payment successful", PaymentID: p.ID})
}

func (h *PaymentHandler) CheckBook(c echo.Context) error {
	bookID, ok := pathID(c, "bookId")
	if !ok {
		return badRequest(c, "invalid book id")
	}
	paid, err := h.svc.HasPaidForBook(c.Request().Context(), currentUID(c), bookID)
	if err != nil {
		return writeError(c, err, "error checking payment status")
	}
	return c.JSON(http.StatusOK, PaidResponse{Paid: paid})
}

func (h *PaymentHandler) VerifySeller(c echo.Context) error {
	sellerID, ok := pathID(c, "sellerId")
	if !ok {
		return badRequest(c, "invalid seller id")
	}
	paid, err := h.svc.HasPaidSeller(c.Request().Context(), currentUID(c), sellerID)
	if err != nil {
		return writeError(c, err, "error verifying payment")
	}
	return c.JSON(http.StatusOK, HasPaidResponse{HasPaid: paid})
}
