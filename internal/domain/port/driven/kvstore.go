package driven

import "context"

// KVStore defines the driven port for the persistent key-value store that
// backs the token store. Values are opaque strings; the adapter is responsible
// for encrypting them at rest.
type KVStore interface {
	// Set stores or replaces the value under namespace/key.
	Set(ctx context.Context, namespace, key, value string) error

	// Get returns the value under namespace/key, or ("", nil) if absent.
	Get(ctx context.Context, namespace, key string) (string, error)

	// Delete removes namespace/key. Deleting a missing key is not an error.
	Delete(ctx context.Context, namespace, key string) error

	// DeleteNamespace removes every key in the namespace.
	DeleteNamespace(ctx context.Context, namespace string) error
}
