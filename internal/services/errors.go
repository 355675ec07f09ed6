package services

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("item not found in cart")
	ErrShippingNotFound = errors.New("shipping not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrReviewNotFound   = errors.New("review not found")
	ErrUserNotFound     = errors.New("user not found")

	// ErrInvalidReference wraps a not-found error for an id supplied in a
	// request body, which is a bad request rather than a missing resource.
	ErrInvalidReference = errors.New("invalid reference")

	ErrCartConsumed          = errors.New("an order has already been created for this cart")
	ErrCartEmpty             = errors.New("cart is empty")
	ErrShippingExists        = errors.New("shipping details already exist for this cart")
	ErrShippingMismatch      = errors.New("shipping does not belong to this cart")
	ErrInvalidQuantity       = errors.New("Quantity must be greater than 0")
	ErrOutOfStock            = errors.New("product is out of stock")
	ErrInvalidDeliveryCharge = errors.New("delivery charge cannot be negative")
	ErrInvalidAmount         = errors.New("amount must be greater than 0")
	ErrDuplicateTransaction  = errors.New("transaction id already recorded")
	ErrTooManyPhotos         = errors.New("Can add utmost 2 images")

	ErrInvalidCredentials = errors.New("Invalid username or password")
	ErrAccountNotVerified = errors.New("Account is not verified")
	ErrEmailTaken         = errors.New("The email is already taken.")
	ErrInvalidOldPassword = errors.New("Invalid Old Password")
	ErrRecoveryFailed     = errors.New("Could not authenticate")
	ErrInvalidToken       = errors.New("Token is invalid or expired")

	ErrForbidden = errors.New("you do not have permission to perform this action")
)

// ValidationError carries field-level messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = message
}

// OrNil returns nil when no field failed.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
