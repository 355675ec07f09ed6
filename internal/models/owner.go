package models

import (
	"fmt"
	"strconv"
)

// OwnerKind tells whether a cart or wishlist belongs to a registered user or
// to an anonymous browser session.
type OwnerKind string

const (
	OwnerUser    OwnerKind = "user"
	OwnerSession OwnerKind = "session"
)

type Owner struct {
	Kind OwnerKind
	Key  string
}

func UserOwner(userID uint) Owner {
	return Owner{Kind: OwnerUser, Key: strconv.FormatUint(uint64(userID), 10)}
}

func SessionOwner(sessionKey string) Owner {
	return Owner{Kind: OwnerSession, Key: sessionKey}
}

// UserID returns the user id for user owners.
func (o Owner) UserID() (uint, bool) {
	if o.Kind != OwnerUser {
		return 0, false
	}
	id, err := strconv.ParseUint(o.Key, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func (o Owner) IsZero() bool {
	return o.Kind == "" || o.Key == ""
}

func (o Owner) String() string {
	return fmt.Sprintf("%s:%s", o.Kind, o.Key)
}

// userIDPtr is stored next to owner_kind/owner_key so user-owned rows keep a
// real foreign key.
func (o Owner) userIDPtr() *uint {
	if id, ok := o.UserID(); ok {
		return &id
	}
	return nil
}
