package service

import (
	"context"
	"errors"
	"testing"
)

func TestPaymentRecordValidation(t *testing.T) {
	f := newFixture(t)
	payments := NewPaymentService(f.repos.Payments)
	ctx := context.Background()

	cases := []struct {
		name   string
		bookID uint64
		amount float64
		method string
	}{
		{"missing book", 0, 10, "card"},
		{"missing method", 1, 10, "  "},
		{"zero amount", 1, 0, "card"},
		{"negative amount", 1, -3, "card"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := payments.Record(ctx, 1, tc.bookID, 2, tc.amount, tc.method); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("got %v, want invalid input", err)
			}
		})
	}
}

func TestPaymentChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	books := newBookService(f, nil)
	payments := NewPaymentService(f.repos.Payments)
	seller := f.seller(t, "sam")
	other := f.seller(t, "sue")
	buyer := f.signup(t, "bob")
	b, _ := books.Create(ctx, seller.ID, validBook("novel"))

	if paid, _ := payments.HasPaidForBook(ctx, buyer.ID, b.ID); paid {
		t.Fatalf("paid before any payment")
	}
	p, err := payments.Record(ctx, buyer.ID, b.ID, seller.ID, 10, "card")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if p.ID == 0 {
		t.Fatalf("payment id not assigned")
	}
	if paid, err := payments.HasPaidForBook(ctx, buyer.ID, b.ID); err != nil || !paid {
		t.Fatalf("has paid for book = %v, %v", paid, err)
	}
	if paid, err := payments.HasPaidSeller(ctx, buyer.ID, seller.ID); err != nil || !paid {
		t.Fatalf("has paid seller = %v, %v", paid, err)
	}
	if paid, _ := payments.HasPaidSeller(ctx, buyer.ID, other.ID); paid {
		t.Fatalf("payment leaked to another seller")
	}
	if paid, _ := payments.HasPaidForBook(ctx, seller.ID, b.ID); paid {
		t.Fatalf("payment leaked to another user")
	}
}

func TestPurchaseLists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	books := newBookService(f, nil)
	purchases := NewPurchaseService(f.repos.Purchases, f.repos.Books)
	seller := f.seller(t, "sam")
	buyer := f.signup(t, "bob")
	b1, _ := books.Create(ctx, seller.ID, validBook("novel"))
	b2, _ := books.Create(ctx, seller.ID, validBook("novel"))

	if _, err := purchases.Record(ctx, buyer.ID, b1.ID, seller.ID, 10, 7); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := purchases.Record(ctx, buyer.ID, b2.ID, seller.ID, 0, 8); err != nil {
		t.Fatalf("free purchase should be allowed: %v", err)
	}
	if _, err := purchases.Record(ctx, buyer.ID, b2.ID, seller.ID, 5, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing payment id: got %v", err)
	}

	mine, err := purchases.ListByBuyer(ctx, buyer.ID)
	if err != nil {
		t.Fatalf("list by buyer: %v", err)
	}
	if len(mine) != 2 || mine[0].Purchase.BookID != b2.ID || mine[1].Purchase.BookID != b1.ID {
		t.Fatalf("buyer purchases should be newest first, got %+v", mine)
	}
	if mine[0].Book == nil || mine[0].Book.ID != b2.ID {
		t.Fatalf("book not attached: %+v", mine[0])
	}

	sales, err := purchases.ListBySeller(ctx, seller.ID)
	if err != nil || len(sales) != 2 {
		t.Fatalf("list by seller = %+v, %v", sales, err)
	}
	if none, _ := purchases.ListBySeller(ctx, buyer.ID); len(none) != 0 {
		t.Fatalf("buyer has no sales, got %+v", none)
	}
	if ok, _ := purchases.HasPurchased(ctx, buyer.ID, b1.ID); !ok {
		t.Fatalf("has purchased should be true")
	}
}
