// Package policy decides which marketplace actions an actor may perform.
// It holds no state and never touches storage.
package policy

import (
	"errors"

	"github.com/shinyyama/book-market-backend/internal/model"
)

type Action string

const (
	ActionListBook         Action = "list-book"
	ActionUploadBookImages Action = "upload-book-images"
	ActionBecomeSeller     Action = "become-seller"
)

var (
	ErrForbidden       = errors.New("forbidden")
	ErrAlreadyVerified = errors.New("user is already a verified seller")
	ErrUnknownAction   = errors.New("unknown action")
)

type Actor struct {
	Role     model.Role
	Verified bool
}

// ActorOf builds the actor from the stored user, never from a claim.
func ActorOf(u *model.User) Actor {
	return Actor{Role: u.Role, Verified: u.Verified}
}

func Authorize(actor Actor, action Action) error {
	switch action {
	case ActionListBook, ActionUploadBookImages:
		if actor.Role == model.RoleSeller && actor.Verified {
			return nil
		}
		return ErrForbidden
	case ActionBecomeSeller:
		if actor.Verified {
			return ErrAlreadyVerified
		}
		return nil
	default:
		return ErrUnknownAction
	}
}
