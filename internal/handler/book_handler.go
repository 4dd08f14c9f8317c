package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/book-market-backend/internal/model"
	"github.com/shinyyama/book-market-backend/internal/service"
)

type BookHandler struct {
	svc service.BookService
}

func NewBookHandler(svc service.BookService) *BookHandler {
	return &BookHandler{svc: svc}
}

type createBookRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	MRP         float64 `json:"mrp"`
	Edition     string  `json:"edition"`
	Publisher   string  `json:"publisher"`
	Category    string  `json:"category"`
	BookFront   string  `json:"bookFront"`
	BookBack    string  `json:"bookBack"`
	BookIndex   string  `json:"bookIndex"`
	BookMiddle  string  `json:"bookMiddle"`
}

type SellerResponse struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Telegram string `json:"telegram"`
	Image    string `json:"image,omitempty"`
}

type BookResponse struct {
	ID          uint64          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       float64         `json:"price"`
	MRP         float64         `json:"mrp"`
	Edition     string          `json:"edition"`
	Publisher   string          `json:"publisher"`
	Category    string          `json:"category"`
	BookFront   string          `json:"bookFront"`
	BookBack    string          `json:"bookBack"`
	BookIndex   string          `json:"bookIndex"`
	BookMiddle  string          `json:"bookMiddle"`
	SellerID    uint64          `json:"sellerId"`
	Seller      *SellerResponse `json:"seller,omitempty"`
	CanChat     *bool           `json:"canChat,omitempty"`
	CreatedAt   string          `json:"createdAt"`
}

type CreateBookResponse struct {
	Message string       `json:"message"`
	Book    BookResponse `json:"book"`
}

func toBookResponse(b *model.Book) BookResponse {
	return BookResponse{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Price:       b.Price,
		MRP:         b.MRP,
		Edition:     b.Edition,
		Publisher:   b.Publisher,
		Category:    b.Category,
		BookFront:   b.BookFront,
		BookBack:    b.BookBack,
		BookIndex:   b.BookIndex,
		BookMiddle:  b.BookMiddle,
		SellerID:    b.SellerID,
		CreatedAt:   formatTime(b.CreatedAt),
	}
}

func toListingResponse(l *service.BookListing, withImage bool) BookResponse {
	resp := toBookResponse(&l.Book)
	seller := SellerResponse{
		ID:       l.Seller.ID,
		Name:     l.Seller.Name,
		Location: l.Seller.Location,
		Telegram: l.Seller.Telegram,
	}
	if withImage {
		seller.Image = l.Seller.Image
	}
	resp.Seller = &seller
	return resp
}

func toListingResponses(list []service.BookListing) []BookResponse {
	out := make([]BookResponse, 0, len(list))
	for i := range list {
		out = append(out, toListingResponse(&list[i], false))
	}
	return out
}

// Create serves both POST /api/book and POST /api/books.
func (h *BookHandler) Create(c echo.Context) error {
	var req createBookRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	book, err := h.svc.Create(c.Request().Context(), currentUID(c), service.CreateBookInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		MRP:         req.MRP,
		Edition:     req.Edition,
		Publisher:   req.Publisher,
		Category:    req.Category,
		BookFront:   req.BookFront,
		BookBack:    req.BookBack,
		BookIndex:   req.BookIndex,
		BookMiddle:  req.BookMiddle,
	})
	if err != nil {
		return writeError(c, err, "error creating book")
	}
	return c.JSON(http.StatusCreated, CreateBookResponse{Message: "Book created successfully", Book: toBookResponse(book)})
}

func (h *BookHandler) List(c echo.Context) error {
	list, err := h.svc.List(c.Request().Context())
	if err != nil {
		return writeError(c, err, "error fetching books")
	}
	return c.JSON(http.StatusOK, toListingResponses(list))
}

func (h *BookHandler) ListByCategory(c echo.Context) error {
	list, err := h.svc.ListByCategory(c.Request().Context(), c.Param("category"))
	if err != nil {
		return writeError(c, err, "error fetching books")
	}
	return c.JSON(http.StatusOK, toListingResponses(list))
}

func (h *BookHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "bookId")
	if !ok {
		return badRequest(c, "invalid book id")
	}
	d, err := h.svc.Detail(c.Request().Context(), id, currentUID(c))
	if err != nil {
		return writeError(c, err, "error fetching book details")
	}
	resp := toListingResponse(&d.BookListing, true)
	canChat := d.CanChat
	resp.CanChat = &canChat
	return c.JSON(http.StatusOK, resp)
}
