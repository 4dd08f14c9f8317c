// Package memory keeps every repository in-process. It backs tests and
// local runs without a database and reports the same gorm errors as the
// SQL implementations.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shinyyama/book-market-backend/internal/model"
	"github.com/shinyyama/book-market-backend/internal/repository"
	"gorm.io/gorm"
)

type Store struct {
	mu sync.RWMutex

	seq uint64

	users     map[uint64]model.User
	books     map[uint64]model.Book
	wishlist  []model.WishlistEntry
	payments  []model.Payment
	purchases []model.Purchase
	chats     map[uint64]model.Chat
	parts     map[uint64][]model.ChatParticipant // chat id -> participants
	messages  []model.Message
}

func NewStore() *Store {
	return &Store{
		users: make(map[uint64]model.User),
		books: make(map[uint64]model.Book),
		chats: make(map[uint64]model.Chat),
		parts: make(map[uint64][]model.ChatParticipant),
	}
}

func (s *Store) nextID() uint64 {
	s.seq++
	return s.seq
}

// Set exposes the store through the repository interfaces.
func (s *Store) Set() repository.Set {
	return repository.Set{
		Users:     userRepo{s},
		Books:     bookRepo{s},
		Wishlist:  wishlistRepo{s},
		Payments:  paymentRepo{s},
		Purchases: purchaseRepo{s},
		Chats:     chatRepo{s},
	}
}

type userRepo struct{ s *Store }

func (r userRepo) Create(ctx context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	now := time.Now()
	u.ID = r.s.nextID()
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	u.CreatedAt, u.UpdatedAt = now, now
	r.s.users[u.ID] = *u
	return nil
}

func (r userRepo) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r userRepo) FindByIDs(ctx context.Context, ids []uint64) ([]model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]model.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			list = append(list, u)
		}
	}
	return list, nil
}

func (r userRepo) PromoteToSeller(ctx context.Context, id uint64, telegram, location string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok || u.Verified {
		return 0, nil
	}
	u.Role = model.RoleSeller
	u.Verified = true
	u.Telegram = telegram
	u.Location = location
	u.TokenVersion++
	u.UpdatedAt = time.Now()
	r.s.users[id] = u
	return 1, nil
}

func (r userRepo) SetImage(ctx context.Context, id uint64, imageURL string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return 0, nil
	}
	u.Image = imageURL
	u.UpdatedAt = time.Now()
	r.s.users[id] = u
	return 1, nil
}

func (r userRepo) BumpTokenVersion(ctx context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.TokenVersion++
	r.s.users[id] = u
	return nil
}

type bookRepo struct{ s *Store }

func (r bookRepo) Create(ctx context.Context, b *model.Book) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	b.ID = r.s.nextID()
	b.CreatedAt, b.UpdatedAt = now, now
	r.s.books[b.ID] = *b
	return nil
}

func (r bookRepo) FindByID(ctx context.Context, id uint64) (*model.Book, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.books[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &b, nil
}

func (r bookRepo) FindByIDs(ctx context.Context, ids []uint64) ([]model.Book, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]model.Book, 0, len(ids))
	for _, id := range ids {
		if b, ok := r.s.books[id]; ok {
			list = append(list, b)
		}
	}
	return list, nil
}

func (r bookRepo) List(ctx context.Context, category string) ([]model.Book, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]model.Book, 0, len(r.s.books))
	for _, b := range r.s.books {
		if category != "" && b.Category != category {
			continue
		}
		list = append(list, b)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
	return list, nil
}

type wishlistRepo struct{ s *Store }

func (r wishlistRepo) Add(ctx context.Context, userID, bookID uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.wishlist {
		if e.UserID == userID && e.BookID == bookID {
			return nil
		}
	}
	r.s.wishlist = append(r.s.wishlist, model.WishlistEntry{
		ID: r.s.nextID(), UserID: userID, BookID: bookID, CreatedAt: time.Now(),
	})
	return nil
}

func (r wishlistRepo) Remove(ctx context.Context, userID, bookID uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.wishlist[:0]
	for _, e := range r.s.wishlist {
		if e.UserID == userID && e.BookID == bookID {
			continue
		}
		kept = append(kept, e)
	}
	r.s.wishlist = kept
	return nil
}

func (r wishlistRepo) Exists(ctx context.Context, userID, bookID uint64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, e := range r.s.wishlist {
		if e.UserID == userID && e.BookID == bookID {
			return true, nil
		}
	}
	return false, nil
}

func (r wishlistRepo) BookIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var ids []uint64
	for _, e := range r.s.wishlist {
		if e.UserID == userID {
			ids = append(ids, e.BookID)
		}
	}
	return ids, nil
}

type paymentRepo struct{ s *Store }

func (r paymentRepo) Create(ctx context.Context, p *model.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.nextID()
	if p.Status == "" {
		p.Status = model.LedgerStatusCompleted
	}
	p.CreatedAt = time.Now()
	r.s.payments = append(r.s.payments, *p)
	return nil
}

func (r paymentRepo) HasCompletedForBook(ctx context.Context, userID, bookID uint64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.payments {
		if p.UserID == userID && p.BookID == bookID && p.Status == model.LedgerStatusCompleted {
			return true, nil
		}
	}
	return false, nil
}

func (r paymentRepo) HasCompletedForSeller(ctx context.Context, userID, sellerID uint64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.payments {
		if p.UserID != userID || p.Status != model.LedgerStatusCompleted {
			continue
		}
		if b, ok := r.s.books[p.BookID]; ok && b.SellerID == sellerID {
			return true, nil
		}
	}
	return false, nil
}

type purchaseRepo struct{ s *Store }

func (r purchaseRepo) Create(ctx context.Context, p *model.Purchase) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.nextID()
	if p.Status == "" {
		p.Status = model.LedgerStatusCompleted
	}
	p.CreatedAt = time.Now()
	r.s.purchases = append(r.s.purchases, *p)
	return nil
}

func (r purchaseRepo) HasCompletedForBook(ctx context.Context, userID, bookID uint64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.purchases {
		if p.UserID == userID && p.BookID == bookID && p.Status == model.LedgerStatusCompleted {
			return true, nil
		}
	}
	return false, nil
}

func (r purchaseRepo) ListByBuyer(ctx context.Context, buyerID uint64) ([]model.Purchase, error) {
	return r.filter(func(p model.Purchase) bool { return p.UserID == buyerID }), nil
}

func (r purchaseRepo) ListBySeller(ctx context.Context, sellerID uint64) ([]model.Purchase, error) {
	return r.filter(func(p model.Purchase) bool { return p.SellerID == sellerID }), nil
}

// filter walks newest first to match the SQL ORDER BY id DESC.
func (r purchaseRepo) filter(keep func(model.Purchase) bool) []model.Purchase {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []model.Purchase
	for i := len(r.s.purchases) - 1; i >= 0; i-- {
		if keep(r.s.purchases[i]) {
			list = append(list, r.s.purchases[i])
		}
	}
	return list
}
