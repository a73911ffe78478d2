package storage

import "context"

// Store persists generated and acquired audio assets and hands back a
// publicly fetchable URL for each object.
type Store interface {
	// Put writes the object under key and returns its public URL.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// PutFile streams a local file into the store and returns its public URL.
	PutFile(ctx context.Context, key, path, contentType string) (string, error)
	// URL resolves the public URL for an already stored key.
	URL(key string) string
}
