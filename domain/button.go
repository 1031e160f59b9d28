package domain

import "context"

const (
	DefaultLikedClass   = "btn-primary"
	DefaultUnlikedClass = "btn-secondary"
)

// ClassPair is the pair of mutually exclusive classes that render a like state
type ClassPair struct {
	Liked   string // Applied while the item is liked
	Unliked string // Applied while the item is not liked
}

// DefaultClassPair returns the btn-primary / btn-secondary pair
func DefaultClassPair() ClassPair {
	return ClassPair{
		Liked:   DefaultLikedClass,
		Unliked: DefaultUnlikedClass,
	}
}

// Swap returns the class to remove and the class to add so that the element
// ends up rendering the given state.
func (p ClassPair) Swap(liked bool) (remove, add string) {
	if liked {
		return p.Unliked, p.Liked
	}
	return p.Liked, p.Unliked
}

// ButtonElement is one rendered like button.
// Implementations are backed by a parsed HTML document or by a live browser tab.
type ButtonElement interface {
	// ID returns the identifier read from the element's data attribute.
	ID() string

	// HasClass reports whether the element currently carries the class.
	HasClass(ctx context.Context, class string) (bool, error)

	// SwapClass removes one class and adds the other in a single mutation,
	// so that observers never see both or neither.
	SwapClass(ctx context.Context, remove, add string) error

	// SetDisabled toggles the disabled attribute.
	SetDisabled(ctx context.Context, disabled bool) error
}

// BindingRepository keeps the explicit collection of bound buttons
type BindingRepository interface {
	// Add binds the element under its id. Adding the same element twice is a no-op.
	// Returns true if the element was not bound before.
	Add(el ButtonElement) bool

	// Remove unbinds every element of the id and returns how many were removed.
	Remove(id string) int

	// Get returns the elements bound under the id, in bind order.
	Get(id string) []ButtonElement

	// IDs returns the bound ids in bind order.
	IDs() []string

	// Len returns the number of bound elements.
	Len() int
}

// ToggleUsecase is the like-toggle handler
type ToggleUsecase interface {
	// Attach binds the given elements and returns how many new bindings were made.
	Attach(elements ...ButtonElement) int

	// Detach unbinds the id. Later clicks on it fail with ErrNotFound.
	Detach(id string) int

	// Click toggles the like state of the id on the server and reflects the
	// confirmed state on every element bound to it.
	Click(ctx context.Context, id string) ToggleOutcome

	// Bindings returns the number of bound elements.
	Bindings() int
}
