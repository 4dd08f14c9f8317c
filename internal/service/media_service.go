package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/shinyyama/book-market-backend/internal/policy"
	"github.com/shinyyama/book-market-backend/internal/repository"
	"github.com/shinyyama/book-market-backend/internal/storage"
)

// BookImageFields are the upload fields every listing needs, in display order.
var BookImageFields = []string{"bookFront", "bookBack", "bookIndex", "bookMiddle"}

type ImageFile struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type MediaService interface {
	UploadBookImages(ctx context.Context, userID uint64, files map[string]ImageFile) (map[string]string, error)
	UploadProfileImage(ctx context.Context, file *ImageFile) (string, error)
}

type mediaService struct {
	store    storage.ObjectStore
	userRepo repository.UserRepository
	maxBytes int64
}

func NewMediaService(store storage.ObjectStore, userRepo repository.UserRepository, maxBytes int64) MediaService {
	return &mediaService{store: store, userRepo: userRepo, maxBytes: maxBytes}
}

func (s *mediaService) UploadBookImages(ctx context.Context, userID uint64, files map[string]ImageFile) (map[string]string, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	if err := policy.Authorize(policy.ActorOf(u), policy.ActionUploadBookImages); err != nil {
		return nil, policyError(err)
	}
	if len(files) == 0 {
		return nil, invalid("no files uploaded")
	}
	for _, field := range BookImageFields {
		f, ok := files[field]
		if !ok {
			return nil, invalid("missing " + field + " image")
		}
		if err := s.check(field, &f); err != nil {
			return nil, err
		}
	}
	urls := make(map[string]string, len(BookImageFields))
	written := make([]string, 0, len(BookImageFields))
	for _, field := range BookImageFields {
		f := files[field]
		key := fmt.Sprintf("books/%d/%s-%s%s", userID, uuid.NewString(), field, ext(f.Filename))
		url, err := s.put(ctx, key, &f)
		if err != nil {
			if cleanupErr := s.discard(ctx, written); cleanupErr != nil {
				return nil, fmt.Errorf("%w (cleanup: %v)", err, cleanupErr)
			}
			return nil, err
		}
		written = append(written, key)
		urls[field] = url
	}
	return urls, nil
}

// discard removes objects stored by a partially failed upload. It runs even
// when ctx is already cancelled.
func (s *mediaService) discard(ctx context.Context, keys []string) error {
	ctx = context.WithoutCancel(ctx)
	var errs []error
	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *mediaService) UploadProfileImage(ctx context.Context, file *ImageFile) (string, error) {
	if file == nil {
		return "", invalid("image file is required")
	}
	if err := s.check("image", file); err != nil {
		return "", err
	}
	return s.put(ctx, "profiles/"+uuid.NewString()+ext(file.Filename), file)
}

func (s *mediaService) check(field string, f *ImageFile) error {
	if !strings.HasPrefix(f.ContentType, "image/") {
		return invalid(field + " must be an image")
	}
	if f.Size <= 0 {
		return invalid(field + " is empty")
	}
	if s.maxBytes > 0 && f.Size > s.maxBytes {
		return invalid(fmt.Sprintf("%s exceeds %d bytes", field, s.maxBytes))
	}
	return nil
}

func (s *mediaService) put(ctx context.Context, key string, f *ImageFile) (string, error) {
	url, err := s.store.Put(ctx, key, f.Body, f.Size, f.ContentType)
	if err != nil {
		return "", fmt.Errorf("%w: upload %s: %v", ErrUpstream, key, err)
	}
	return url, nil
}

func ext(filename string) string {
	return strings.ToLower(path.Ext(filename))
}
