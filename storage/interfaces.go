// Package storage provides the durable persistence providers the session core
// writes through: a single-slot token store and a key/value store for the
// serialized user snapshot, managed context and last-selection records. The
// storage medium is swappable; in-memory, file, Redis and DynamoDB backends
// are provided.
package storage

import "context"

// Well-known keys in the key/value store.
const (
	KeyUser          = "session.user"
	KeyContext       = "session.context"
	KeyLastSelection = "session.lastSelection"
	KeyToken         = "session.token"
)

// TokenStore holds the current bearer token. Get returns "" when no token is
// stored.
type TokenStore interface {
	GetToken() (string, error)
	SetToken(token string) error
	ClearToken() error
}

// KeyValueStore is durable key/value persistence for session records. Values
// are opaque strings (JSON documents in practice). Get reports found=false
// for a missing key rather than an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// KVTokenStore adapts a KeyValueStore into a TokenStore so remote backends
// can hold the token slot too.
type KVTokenStore struct {
	kv KeyValueStore
}

// NewKVTokenStore wraps the given key/value store.
func NewKVTokenStore(kv KeyValueStore) *KVTokenStore {
	return &KVTokenStore{kv: kv}
}

func (s *KVTokenStore) GetToken() (string, error) {
	value, found, err := s.kv.Get(context.Background(), KeyToken)
	if err != nil || !found {
		return "", err
	}
	return value, nil
}

func (s *KVTokenStore) SetToken(token string) error {
	return s.kv.Set(context.Background(), KeyToken, token)
}

func (s *KVTokenStore) ClearToken() error {
	return s.kv.Delete(context.Background(), KeyToken)
}
