package provider

import "context"

// Object is one entry of a container listing.
type Object struct {
	Key  string
	Size int64
}

// Provider defines the contract for the object stores the ingester writes to.
// Keys are plain slash-separated strings.
type Provider interface {
	// EnsureContainer creates the target container. An existing container is not an error.
	EnsureContainer(ctx context.Context) error

	// Put writes data under key, overwriting any existing object.
	Put(ctx context.Context, key string, data []byte) error

	// List enumerates every object in the container, regardless of prefix.
	List(ctx context.Context) ([]Object, error)

	// Container returns the target container (bucket) name.
	Container() string

	// Name returns the provider identifier (e.g. "azure", "s3").
	Name() string
}
