package credentials

import "context"

// Storage is the durable key/value layer behind the credential Store.
// SetAll and RemoveAll must apply every entry or none of them.
type Storage interface {
	// Get returns the value for key and whether it was present
	Get(ctx context.Context, key string) (string, bool, error)

	// SetAll writes every entry in one unit
	SetAll(ctx context.Context, entries map[string]string) error

	// RemoveAll deletes the keys; missing keys are not an error
	RemoveAll(ctx context.Context, keys ...string) error

	// Close releases the underlying resources
	Close() error
}
