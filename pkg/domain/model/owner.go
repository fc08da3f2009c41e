package model

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrOwnerRequired = errors.New("user id or guest id is required")

// Owner identifies who a cart, wishlist or order belongs to. Exactly one of
// the registered user id or the guest id is set.
type Owner struct {
	userID  primitive.ObjectID
	guestID string
}

func RegisteredOwner(userID primitive.ObjectID) Owner {
	return Owner{userID: userID}
}

func GuestOwner(guestID string) Owner {
	return Owner{guestID: guestID}
}

func (o Owner) UserID() (primitive.ObjectID, bool) {
	return o.userID, !o.userID.IsZero()
}

func (o Owner) GuestID() (string, bool) {
	return o.guestID, o.userID.IsZero() && o.guestID != ""
}

func (o Owner) IsGuest() bool {
	_, ok := o.GuestID()
	return ok
}

func (o Owner) IsZero() bool {
	return o.userID.IsZero() && o.guestID == ""
}

func (o Owner) String() string {
	if id, ok := o.UserID(); ok {
		return "user:" + id.Hex()
	}
	if o.guestID != "" {
		return "guest:" + o.guestID
	}
	return "anonymous"
}
