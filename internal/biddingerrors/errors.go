package biddingerrors

import "errors"

// Kind classifies an error for callers that need to react to the category
// rather than to a specific sentinel (e.g. the HTTP layer).
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindForbidden
	KindValidation
	KindConflict
	KindUnauthenticated
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Error is a sentinel error carrying its Kind. Sentinels are compared by identity,
// so errors.Is keeps working through fmt.Errorf("...: %w") wrapping.
type Error struct {
	Kind   Kind
	msg    string
	parent *Error
}

func (e *Error) Error() string {
	return e.msg
}

// Unwrap exposes the broader sentinel a refined one was derived from
func (e *Error) Unwrap() error {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, msg: msg}
}

// refine derives a sentinel with its own message that still matches parent
// under errors.Is
func refine(parent *Error, msg string) *Error {
	return &Error{Kind: parent.Kind, msg: msg, parent: parent}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Repository-level errors
var (
	ErrUserNotFound       = newError(KindNotFound, "user not found")
	ErrCollectionNotFound = newError(KindNotFound, "collection not found")
	ErrBidNotFound        = newError(KindNotFound, "bid not found")
	ErrDuplicateEmail     = newError(KindConflict, "user with this email already exists")
)

// authorization errors
var (
	ErrNotCollectionOwner = newError(KindForbidden, "you can only modify your own collections")
	ErrNotBidOwner        = newError(KindForbidden, "you can only modify your own bids")
	ErrNotUserOwner       = newError(KindForbidden, "you can only modify your own account")
)

// business logic errors
var (
	ErrInvalidCollection     = newError(KindValidation, "invalid collection")
	ErrInvalidBid            = newError(KindValidation, "invalid bid")
	ErrInvalidUser           = newError(KindValidation, "invalid user")
	ErrSelfBid               = newError(KindValidation, "you cannot bid on your own collection")
	ErrDuplicatePendingBid   = newError(KindValidation, "you already have a pending bid on this collection")
	ErrBidNotPending         = newError(KindValidation, "bid is not pending")
	ErrBidCollectionMismatch = newError(KindValidation, "bid does not belong to this collection")
)

// bid state errors specific to the bidder's own operations
var (
	ErrUpdateNotPending = refine(ErrBidNotPending, "you can only update pending bids")
	ErrCancelNotPending = refine(ErrBidNotPending, "you can only delete pending bids")
)

// authentication errors
var (
	ErrInvalidCredentials = newError(KindUnauthenticated, "invalid credentials")
	ErrInvalidToken       = newError(KindUnauthenticated, "invalid or missing bearer token")
)
