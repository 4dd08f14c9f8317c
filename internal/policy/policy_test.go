package policy

import (
	"errors"
	"testing"

	"github.com/shinyyama/book-market-backend/internal/model"
)

func TestAuthorize(t *testing.T) {
	cases := []struct {
		name   string
		actor  Actor
		action Action
		want   error
	}{
		{"seller lists", Actor{Role: model.RoleSeller, Verified: true}, ActionListBook, nil},
		{"seller uploads", Actor{Role: model.RoleSeller, Verified: true}, ActionUploadBookImages, nil},
		{"user cannot list", Actor{Role: model.RoleUser}, ActionListBook, ErrForbidden},
		{"user cannot upload", Actor{Role: model.RoleUser}, ActionUploadBookImages, ErrForbidden},
		{"unverified seller cannot list", Actor{Role: model.RoleSeller}, ActionListBook, ErrForbidden},
		{"admin is not a seller", Actor{Role: model.RoleAdmin, Verified: true}, ActionListBook, ErrForbidden},
		{"user becomes seller", Actor{Role: model.RoleUser}, ActionBecomeSeller, nil},
		{"verified cannot become seller", Actor{Role: model.RoleSeller, Verified: true}, ActionBecomeSeller, ErrAlreadyVerified},
		{"unknown", Actor{Role: model.RoleSeller, Verified: true}, Action("delete-everything"), ErrUnknownAction},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Authorize(tc.actor, tc.action)
			if !errors.Is(got, tc.want) {
				t.Fatalf("Authorize(%+v, %s) = %v, want %v", tc.actor, tc.action, got, tc.want)
			}
		})
	}
}
