package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shinyyama/book-market-backend/internal/auth"
	"github.com/shinyyama/book-market-backend/internal/config"
	"github.com/shinyyama/book-market-backend/internal/db"
	"github.com/shinyyama/book-market-backend/internal/repository"
	"github.com/shinyyama/book-market-backend/internal/service"
)

type seedBook struct {
	Name      string
	Publisher string
	Edition   string
	Category  string
	Price     float64
	MRP       float64
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := db.Migrate(gdb); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	repos := repository.NewGormSet(gdb)

	existing, err := repos.Books.List(ctx, "")
	if err != nil {
		return fmt.Errorf("count books: %w", err)
	}
	if len(existing) > 0 && !strings.EqualFold(os.Getenv("FORCE_SEED"), "true") {
		log.Printf("books already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	authSvc := service.NewAuthService(repos.Users, auth.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL))
	userSvc := service.NewUserService(repos.Users, repos.Books, repos.Wishlist, authSvc, nil, nil)
	bookSvc := service.NewBookService(repos.Books, repos.Users, repos.Purchases, nil, 0, nil)

	sellerID, err := ensureSeller(ctx, authSvc, userSvc)
	if err != nil {
		return err
	}

	books := buildSeedBooks()
	for idx, b := range books {
		_, err := bookSvc.Create(ctx, sellerID, service.CreateBookInput{
			Name:        b.Name,
			Description: fmt.Sprintf("%s (%s edition, %s). Lightly used, no missing pages.", b.Name, b.Edition, b.Publisher),
			Price:       b.Price,
			MRP:         b.MRP,
			Edition:     b.Edition,
			Publisher:   b.Publisher,
			Category:    b.Category,
			BookFront:   picsumURL(b.Category, idx+1, 1),
			BookBack:    picsumURL(b.Category, idx+1, 2),
			BookIndex:   picsumURL(b.Category, idx+1, 3),
			BookMiddle:  picsumURL(b.Category, idx+1, 4),
		})
		if err != nil {
			return fmt.Errorf("create book %q: %w", b.Name, err)
		}
	}
	log.Printf("seeded %d books for seller %d", len(books), sellerID)
	return nil
}

func ensureSeller(ctx context.Context, authSvc service.AuthService, userSvc service.UserService) (uint64, error) {
	email := envOr("SEED_SELLER_EMAIL", "seller@example.com")
	password := envOr("SEED_SELLER_PASSWORD", "seller-password")

	sess, err := authSvc.Signup(ctx, "Demo Seller", email, password)
	if errors.Is(err, service.ErrConflict) {
		sess, err = authSvc.Login(ctx, email, password)
	}
	if err != nil {
		return 0, fmt.Errorf("seed seller account: %w", err)
	}
	if sess.User.Verified {
		return sess.User.ID, nil
	}
	if _, err := userSvc.BecomeSeller(ctx, sess.User.ID, "@demo_seller", "Tokyo"); err != nil {
		return 0, fmt.Errorf("promote seed seller: %w", err)
	}
	return sess.User.ID, nil
}

func buildSeedBooks() []seedBook {
	return []seedBook{
		{Name: "Introduction to Algorithms", Publisher: "MIT Press", Edition: "3rd", Category: "Textbook", Price: 35, MRP: 95},
		{Name: "Linear Algebra Done Right", Publisher: "Springer", Edition: "3rd", Category: "Textbook", Price: 22, MRP: 49},
		{Name: "The Go Programming Language", Publisher: "Addison-Wesley", Edition: "1st", Category: "Programming", Price: 18, MRP: 40},
		{Name: "Designing Data-Intensive Applications", Publisher: "O'Reilly", Edition: "1st", Category: "Programming", Price: 25, MRP: 55},
		{Name: "Dune", Publisher: "Ace", Edition: "Reissue", Category: "Fiction", Price: 6, MRP: 18},
		{Name: "The Left Hand of Darkness", Publisher: "Ace", Edition: "50th Anniversary", Category: "Fiction", Price: 7, MRP: 17},
		{Name: "Sapiens", Publisher: "Harper", Edition: "1st", Category: "Non-Fiction", Price: 9, MRP: 25},
		{Name: "Organic Chemistry", Publisher: "Wiley", Edition: "12th", Category: "Textbook", Price: 40, MRP: 120},
	}
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func picsumURL(slug string, itemIndex int, k int) string {
	return fmt.Sprintf("https://picsum.photos/seed/%s-%d-%d/600/800", strings.ToLower(slug), itemIndex, k)
}
