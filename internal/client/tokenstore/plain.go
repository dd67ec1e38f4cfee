package tokenstore

import "context"

// PlainStore keeps the token unencrypted in local storage. Development and
// browser use only.
type PlainStore struct {
	storage LocalStorage
}

func NewPlainStore(storage LocalStorage) *PlainStore {
	return &PlainStore{storage: storage}
}

func (s *PlainStore) SetToken(ctx context.Context, token string) error {
	return s.storage.SetItem(ctx, TokenKey, token)
}

func (s *PlainStore) GetToken(ctx context.Context) (string, bool, error) {
	return s.storage.GetItem(ctx, TokenKey)
}

func (s *PlainStore) RemoveToken(ctx context.Context) error {
	return s.storage.RemoveItem(ctx, TokenKey)
}

func (s *PlainStore) Clear(ctx context.Context) error {
	return s.storage.Clear(ctx)
}

func (s *PlainStore) HasToken(ctx context.Context) (bool, error) {
	return hasToken(ctx, s)
}
