package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/book-market-backend/internal/model"
	"github.com/shinyyama/book-market-backend/internal/service"
)

type PurchaseHandler struct {
	svc service.PurchaseService
}

func NewPurchaseHandler(svc service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{svc: svc}
}

type purchaseRequest struct {
	BookID    ID      `json:"bookId"`
	SellerID  ID      `json:"sellerId"`
	Amount    float64 `json:"amount"`
	PaymentID ID      `json:"paymentId"`
}

type PurchaseResponse struct {
	ID        uint64        `json:"id"`
	UserID    uint64        `json:"userId"`
	BookID    uint64        `json:"bookId"`
	SellerID  uint64        `json:"sellerId"`
	Amount    float64       `json:"amount"`
	PaymentID uint64        `json:"paymentId"`
	Status    string        `json:"status"`
	CreatedAt string        `json:"createdAt"`
	Book      *BookResponse `json:"book,omitempty"`
}

type CreatePurchaseResponse struct {
	Message  string           `json:"message"`
	Purchase PurchaseResponse `json:"purchase"`
}

func toPurchaseResponse(p *model.Purchase) PurchaseResponse {
	return PurchaseResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		BookID:    p.BookID,
		SellerID:  p.SellerID,
		Amount:    p.Amount,
		PaymentID: p.PaymentID,
		Status:    string(p.Status),
		CreatedAt: formatTime(p.CreatedAt),
	}
}

func toPurchaseList(list []service.PurchaseWithBook) []PurchaseResponse {
	resp := make([]PurchaseResponse, 0, len(list))
	for _, pw := range list {
		r := toPurchaseResponse(&pw.Purchase)
		if pw.Book != nil {
			b := toBookResponse(pw.Book)
			r.Book = &b
		}
		resp = append(resp, r)
	}
	return resp
}

func (h *PurchaseHandler) Create(c echo.Context) error {
	var req purchaseRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	p, err := h.svc.Record(c.Request().Context(), currentUID(c), uint64(req.BookID), uint64(req.SellerID), req.Amount, uint64(req.PaymentID))
	if err != nil {
		return writeError(c, err, "failed to record purchase")
	}
	return c.JSON(http.StatusCreated, CreatePurchaseResponse{Message: "Purchase recorded successfully", Purchase: toPurchaseResponse(p)})
}

func (h *PurchaseHandler) ListMine(c echo.Context) error {
	list, err := h.svc.ListByBuyer(c.Request().Context(), currentUID(c))
	if err != nil {
		return writeError(c, err, "failed to fetch purchases")
	}
	return c.JSON(http.StatusOK, toPurchaseList(list))
}

func (h *PurchaseHandler) ListSales(c echo.Context) error {
	list, err := h.svc.ListBySeller(c.Request().Context(), currentUID(c))
	if err != nil {
		return writeError(c, err, "failed to fetch sales")
	}
	return c.JSON(http.StatusOK, toPurchaseList(list))
}
