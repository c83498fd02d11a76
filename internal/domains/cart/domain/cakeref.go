package domain

import "errors"

// CakeKind discriminates the two possible cake references a line item may carry.
type CakeKind string

const (
	// CakeKindAvailable points at a bakery's pre-made catalog cake.
	CakeKindAvailable CakeKind = "available"
	// CakeKindCustom points at a customer-composed cake.
	CakeKindCustom CakeKind = "custom"
)

var (
	ErrInvalidCakeKind = errors.New("cake kind must be available or custom")
	ErrMissingCakeID   = errors.New("cake reference id is required")
)

// CakeRef is a closed tagged union: exactly one kind of cake id, never both.
type CakeRef struct {
	Kind CakeKind `json:"kind"`
	ID   string   `json:"id"`
}

// AvailableCake builds a reference to a pre-made catalog cake.
func AvailableCake(id string) CakeRef {
	return CakeRef{Kind: CakeKindAvailable, ID: id}
}

// CustomCake builds a reference to a customer-composed cake.
func CustomCake(id string) CakeRef {
	return CakeRef{Kind: CakeKindCustom, ID: id}
}

// Validate enforces the structural invariant of the union.
func (r CakeRef) Validate() error {
	switch r.Kind {
	case CakeKindAvailable, CakeKindCustom:
	default:
		return ErrInvalidCakeKind
	}
	if r.ID == "" {
		return ErrMissingCakeID
	}
	return nil
}

// Equal reports whether two references point at the same cake.
func (r CakeRef) Equal(other CakeRef) bool {
	return r.Kind == other.Kind && r.ID == other.ID
}
