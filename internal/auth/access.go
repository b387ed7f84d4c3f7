package auth

// Owned is implemented by every resource that has a single owning user
type Owned interface {
	OwnerID() string
}

// IsOwner reports whether callerID owns the resource.
// An empty caller never owns anything.
func IsOwner(resource Owned, callerID string) bool {
	return callerID != "" && resource.OwnerID() == callerID
}
