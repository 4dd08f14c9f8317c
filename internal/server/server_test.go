package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/shinyyama/book-market-backend/internal/auth"
	"github.com/shinyyama/book-market-backend/internal/repository/memory"
	"github.com/shinyyama/book-market-backend/internal/storage"
)

type client struct {
	t  *testing.T
	ts *httptest.Server
}

func newClient(t *testing.T) *client {
	t.Helper()
	srv := New(Options{
		Repos:  memory.NewStore().Set(),
		Issuer: auth.NewIssuer("test-secret", "book-market", time.Hour),
		Store:  storage.NewMemoryStore("https://cdn.test"),
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &client{t: t, ts: ts}
}

// do sends body as JSON and decodes the response into out when non-nil.
func (c *client) do(method, path, token string, body, out any) int {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatalf("encode: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.ts.URL+path, &buf)
	if err != nil {
		c.t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := c.ts.Client().Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			c.t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return res.StatusCode
}

type session struct {
	Token string `json:"token"`
	User  struct {
		ID       uint64 `json:"id"`
		Role     string `json:"role"`
		Verified bool   `json:"verified"`
	} `json:"user"`
}

func (c *client) signup(name string) session {
	c.t.Helper()
	var s session
	body := map[string]string{"name": name, "email": name + "@example.com", "password": "pw-" + name}
	if code := c.do(http.MethodPost, "/api/auth/signup", "", body, &s); code != http.StatusCreated {
		c.t.Fatalf("signup %s: status %d", name, code)
	}
	return s
}

func (c *client) login(name string) session {
	c.t.Helper()
	var s session
	body := map[string]string{"email": name + "@example.com", "password": "pw-" + name}
	if code := c.do(http.MethodPost, "/api/auth/login", "", body, &s); code != http.StatusOK {
		c.t.Fatalf("login %s: status %d", name, code)
	}
	return s
}

func bookBody(category string) map[string]any {
	return map[string]any{
		"name": "Calculus", "description": "Lightly used", "price": 12.5, "mrp": 40,
		"edition": "3rd", "publisher": "Pearson", "category": category,
		"bookFront": "https://img/f", "bookBack": "https://img/b",
		"bookIndex": "https://img/i", "bookMiddle": "https://img/m",
	}
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestSellerListsBookInCategory(t *testing.T) {
	c := newClient(t)
	u1 := c.signup("u1")

	var promoted session
	code := c.do(http.MethodPost, "/api/users/become-seller", u1.Token,
		map[string]string{"telegram": "t", "location": "City"}, &promoted)
	if code != http.StatusOK {
		t.Fatalf("become-seller: status %d", code)
	}
	if promoted.User.Role != "seller" || !promoted.User.Verified {
		t.Fatalf("promoted user = %+v", promoted.User)
	}

	// The pre-promotion token no longer authenticates.
	var eb errorBody
	if code := c.do(http.MethodGet, "/api/auth/verify", u1.Token, nil, &eb); code != http.StatusUnauthorized {
		t.Fatalf("stale token: status %d", code)
	}
	if eb.Error.Code != "unauthorized" {
		t.Fatalf("error code = %q", eb.Error.Code)
	}

	s := c.login("u1")
	var created struct {
		Book struct {
			ID       uint64 `json:"id"`
			Category string `json:"category"`
		} `json:"book"`
	}
	if code := c.do(http.MethodPost, "/api/books", s.Token, bookBody("Textbook"), &created); code != http.StatusCreated {
		t.Fatalf("create book: status %d", code)
	}
	if created.Book.Category != "textbook" {
		t.Fatalf("category = %q", created.Book.Category)
	}

	var list []struct {
		ID     uint64 `json:"id"`
		Seller struct {
			Location string `json:"location"`
		} `json:"seller"`
	}
	if code := c.do(http.MethodGet, "/api/books/category/textbook", "", nil, &list); code != http.StatusOK {
		t.Fatalf("list category: status %d", code)
	}
	if len(list) != 1 || list[0].ID != created.Book.ID || list[0].Seller.Location != "City" {
		t.Fatalf("category listing = %+v", list)
	}

	if code := c.do(http.MethodPost, "/api/users/become-seller", s.Token,
		map[string]string{"telegram": "t", "location": "City"}, &eb); code != http.StatusBadRequest {
		t.Fatalf("second promotion: status %d", code)
	}
}

func TestBuyerCannotListBook(t *testing.T) {
	c := newClient(t)
	u := c.signup("buyer")
	var eb errorBody
	if code := c.do(http.MethodPost, "/api/book", u.Token, bookBody("novel"), &eb); code != http.StatusForbidden {
		t.Fatalf("status %d, want 403", code)
	}
	if eb.Error.Code != "forbidden" {
		t.Fatalf("error code = %q", eb.Error.Code)
	}
}

type chatBody struct {
	ID          uint64 `json:"id"`
	UnreadCount int    `json:"unreadCount"`
	LastMessage *struct {
		Text string `json:"text"`
	} `json:"lastMessage"`
}

func TestChatUnreadFlow(t *testing.T) {
	c := newClient(t)
	u1 := c.signup("u1")
	u2 := c.signup("u2")

	var chat chatBody
	if code := c.do(http.MethodPost, "/api/chats", u2.Token, map[string]any{"participantId": u1.User.ID}, &chat); code != http.StatusOK {
		t.Fatalf("create chat: status %d", code)
	}
	msgPath := fmt.Sprintf("/api/chats/%d/messages", chat.ID)
	if code := c.do(http.MethodPost, msgPath, u2.Token, map[string]string{"text": "hi"}, nil); code != http.StatusOK {
		t.Fatalf("send: status %d", code)
	}

	var chats []chatBody
	if code := c.do(http.MethodGet, "/api/chats", u1.Token, nil, &chats); code != http.StatusOK {
		t.Fatalf("list chats: status %d", code)
	}
	if len(chats) != 1 || chats[0].UnreadCount != 1 || chats[0].LastMessage == nil || chats[0].LastMessage.Text != "hi" {
		t.Fatalf("u1 chats = %+v", chats)
	}

	var ok struct {
		Success bool `json:"success"`
	}
	if code := c.do(http.MethodPatch, fmt.Sprintf("/api/chats/%d/read", chat.ID), u1.Token, nil, &ok); code != http.StatusOK || !ok.Success {
		t.Fatalf("mark read: status %d, %+v", code, ok)
	}
	chats = nil
	c.do(http.MethodGet, "/api/chats", u1.Token, nil, &chats)
	if len(chats) != 1 || chats[0].UnreadCount != 0 {
		t.Fatalf("after read = %+v", chats)
	}

	var msgs []struct {
		Text   string `json:"text"`
		Status string `json:"status"`
	}
	c.do(http.MethodGet, msgPath, u2.Token, nil, &msgs)
	if len(msgs) != 1 || msgs[0].Status != "read" {
		t.Fatalf("messages = %+v", msgs)
	}

	// Participant id may arrive as a string; the same chat comes back.
	var again chatBody
	c.do(http.MethodPost, "/api/chats", u1.Token, map[string]any{"participantId": fmt.Sprint(u2.User.ID)}, &again)
	if again.ID != chat.ID {
		t.Fatalf("expected chat %d, got %d", chat.ID, again.ID)
	}

	outsider := c.signup("eve")
	var eb errorBody
	if code := c.do(http.MethodGet, msgPath, outsider.Token, nil, &eb); code != http.StatusForbidden {
		t.Fatalf("outsider: status %d", code)
	}
}

func TestAuthErrors(t *testing.T) {
	c := newClient(t)
	c.signup("ann")

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{"no token", http.MethodGet, "/api/wishlist", "", nil, http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/api/wishlist", "not-a-jwt", nil, http.StatusUnauthorized},
		{"wrong password", http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ann@example.com", "password": "nope"}, http.StatusBadRequest},
		{"unknown email", http.MethodPost, "/api/auth/login", "", map[string]string{"email": "zed@example.com", "password": "nope"}, http.StatusBadRequest},
		{"duplicate signup", http.MethodPost, "/api/auth/signup", "", map[string]string{"name": "ann", "email": "ann@example.com", "password": "x"}, http.StatusConflict},
		{"missing fields", http.MethodPost, "/api/auth/signup", "", map[string]string{"email": "bo@example.com"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var eb errorBody
			code := c.do(tc.method, tc.path, tc.token, tc.body, &eb)
			if code != tc.want {
				t.Fatalf("status %d, want %d", code, tc.want)
			}
			if eb.Error.Code == "" || eb.Error.Message == "" {
				t.Fatalf("error body missing fields: %+v", eb)
			}
		})
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	c := newClient(t)
	s := c.signup("ann")
	if code := c.do(http.MethodPost, "/api/auth/logout", s.Token, nil, nil); code != http.StatusOK {
		t.Fatalf("logout: status %d", code)
	}
	if code := c.do(http.MethodGet, "/api/auth/verify", s.Token, nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("verify after logout: status %d", code)
	}
}

func TestHealthz(t *testing.T) {
	c := newClient(t)
	var body map[string]string
	if code := c.do(http.MethodGet, "/healthz", "", nil, &body); code != http.StatusOK || body["ok"] != "true" {
		t.Fatalf("healthz: %d %+v", code, body)
	}
}

// sellerWithBook promotes name, logs in again and lists one book.
func (c *client) sellerWithBook(name, category string) (session, uint64) {
	c.t.Helper()
	s := c.signup(name)
	if code := c.do(http.MethodPost, "/api/users/become-seller", s.Token,
		map[string]string{"telegram": "@" + name, "location": "City"}, &s); code != http.StatusOK {
		c.t.Fatalf("become-seller %s: status %d", name, code)
	}
	var created struct {
		Book struct {
			ID uint64 `json:"id"`
		} `json:"book"`
	}
	if code := c.do(http.MethodPost, "/api/book", s.Token, bookBody(category), &created); code != http.StatusCreated {
		c.t.Fatalf("create book: status %d", code)
	}
	return s, created.Book.ID
}

func TestWishlistIsIdempotent(t *testing.T) {
	c := newClient(t)
	_, bookID := c.sellerWithBook("sam", "novel")
	buyer := c.signup("bob")

	type wishlist struct {
		Wishlist []struct {
			ID uint64 `json:"id"`
		} `json:"wishlist"`
	}
	for i := 0; i < 2; i++ {
		var w wishlist
		if code := c.do(http.MethodPost, "/api/wishlist/add", buyer.Token, map[string]any{"bookId": bookID}, &w); code != http.StatusOK {
			t.Fatalf("add #%d: status %d", i, code)
		}
		if len(w.Wishlist) != 1 || w.Wishlist[0].ID != bookID {
			t.Fatalf("add #%d: wishlist = %+v", i, w.Wishlist)
		}
	}

	var check struct {
		InWishlist bool `json:"inWishlist"`
	}
	c.do(http.MethodPost, "/api/wishlist/check", buyer.Token, map[string]any{"bookId": bookID}, &check)
	if !check.InWishlist {
		t.Fatalf("expected book in wishlist")
	}

	var w wishlist
	c.do(http.MethodPost, "/api/wishlist/remove", buyer.Token, map[string]any{"bookId": bookID}, &w)
	if len(w.Wishlist) != 0 {
		t.Fatalf("after remove = %+v", w.Wishlist)
	}
	if code := c.do(http.MethodPost, "/api/wishlist/add", buyer.Token, map[string]any{"bookId": 4242}, nil); code != http.StatusNotFound {
		t.Fatalf("unknown book: status %d", code)
	}
}

func TestPurchaseEnablesChat(t *testing.T) {
	c := newClient(t)
	seller, bookID := c.sellerWithBook("sam", "novel")
	buyer := c.signup("bob")
	bookPath := fmt.Sprintf("/api/books/%d", bookID)

	var detail struct {
		CanChat *bool `json:"canChat"`
		Seller  struct {
			ID uint64 `json:"id"`
		} `json:"seller"`
	}
	if code := c.do(http.MethodGet, bookPath, buyer.Token, nil, &detail); code != http.StatusOK {
		t.Fatalf("detail: status %d", code)
	}
	if detail.CanChat == nil || *detail.CanChat {
		t.Fatalf("canChat before purchase = %v", detail.CanChat)
	}
	if code := c.do(http.MethodGet, bookPath, "", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("anonymous detail: status %d", code)
	}

	var paid struct {
		PaymentID uint64 `json:"paymentId"`
	}
	body := map[string]any{"bookId": bookID, "sellerId": seller.User.ID, "amount": 12.5, "paymentMethod": "card"}
	if code := c.do(http.MethodPost, "/api/payments", buyer.Token, body, &paid); code != http.StatusOK || paid.PaymentID == 0 {
		t.Fatalf("payment: status %d, %+v", code, paid)
	}
	var check struct {
		Paid bool `json:"paid"`
	}
	c.do(http.MethodGet, fmt.Sprintf("/api/payments/check/%d", bookID), buyer.Token, nil, &check)
	if !check.Paid {
		t.Fatalf("payment check should report paid")
	}
	var verify struct {
		HasPaid bool `json:"hasPaid"`
	}
	c.do(http.MethodGet, fmt.Sprintf("/api/payments/verify/%d", seller.User.ID), buyer.Token, nil, &verify)
	if !verify.HasPaid {
		t.Fatalf("seller verification should report paid")
	}

	purchase := map[string]any{"bookId": bookID, "sellerId": seller.User.ID, "amount": 12.5, "paymentId": paid.PaymentID}
	if code := c.do(http.MethodPost, "/api/purchases", buyer.Token, purchase, nil); code != http.StatusCreated {
		t.Fatalf("purchase: status %d", code)
	}
	c.do(http.MethodGet, bookPath, buyer.Token, nil, &detail)
	if detail.CanChat == nil || !*detail.CanChat {
		t.Fatalf("canChat after purchase = %v", detail.CanChat)
	}

	var sales []struct {
		BookID uint64 `json:"bookId"`
		Book   *struct {
			Name string `json:"name"`
		} `json:"book"`
	}
	c.do(http.MethodGet, "/api/me/sales", seller.Token, nil, &sales)
	if len(sales) != 1 || sales[0].BookID != bookID || sales[0].Book == nil {
		t.Fatalf("sales = %+v", sales)
	}
}

func TestUploadBookImagesMultipart(t *testing.T) {
	c := newClient(t)
	newForm := func(fields ...string) (*bytes.Buffer, string) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		for _, field := range fields {
			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, field+".png"))
			h.Set("Content-Type", "image/png")
			part, err := w.CreatePart(h)
			if err != nil {
				t.Fatalf("create part: %v", err)
			}
			part.Write([]byte("png-" + field))
		}
		w.Close()
		return &buf, w.FormDataContentType()
	}
	upload := func(token string, fields ...string) (int, map[string]string) {
		body, ct := newForm(fields...)
		req, _ := http.NewRequest(http.MethodPost, c.ts.URL+"/api/upload", body)
		req.Header.Set("Content-Type", ct)
		req.Header.Set("Authorization", "Bearer "+token)
		res, err := c.ts.Client().Do(req)
		if err != nil {
			t.Fatalf("upload: %v", err)
		}
		defer res.Body.Close()
		var out struct {
			URLs map[string]string `json:"urls"`
		}
		_ = json.NewDecoder(res.Body).Decode(&out)
		return res.StatusCode, out.URLs
	}

	all := []string{"bookFront", "bookBack", "bookIndex", "bookMiddle"}
	buyer := c.signup("bob")
	if code, _ := upload(buyer.Token, all...); code != http.StatusForbidden {
		t.Fatalf("buyer upload: status %d", code)
	}

	seller, _ := c.sellerWithBook("sam", "novel")
	if code, _ := upload(seller.Token, all[:3]...); code != http.StatusBadRequest {
		t.Fatalf("missing field: status %d", code)
	}
	code, urls := upload(seller.Token, all...)
	if code != http.StatusOK || len(urls) != 4 {
		t.Fatalf("upload: status %d, urls %v", code, urls)
	}
	for _, field := range all {
		if !strings.HasPrefix(urls[field], "https://cdn.test/books/") {
			t.Fatalf("%s url = %q", field, urls[field])
		}
	}
}
