package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/samber/mo"
)

// ErrReadOnlyCredentialStore は保存をサポートしない CredentialStore のエラー
var ErrReadOnlyCredentialStore = errors.New("credential store is read-only")

// StaticCredentialStore は設定値から与えられた固定の認証情報を返す
type StaticCredentialStore struct {
	credential string
}

// NewStaticCredentialStore は新しい StaticCredentialStore を作成する
func NewStaticCredentialStore(credential string) *StaticCredentialStore {
	return &StaticCredentialStore{credential: strings.TrimSpace(credential)}
}

func (s *StaticCredentialStore) Get(ctx context.Context) (mo.Option[string], error) {
	if s.credential == "" {
		return mo.None[string](), nil
	}
	return mo.Some(s.credential), nil
}

func (s *StaticCredentialStore) Save(ctx context.Context, credential string) error {
	return ErrReadOnlyCredentialStore
}

// FallbackCredentialStore は primary に値がなければ fallback を参照する。
// 保存は primary に対して行う。
type FallbackCredentialStore struct {
	primary  CredentialStore
	fallback CredentialStore
}

// NewFallbackCredentialStore は新しい FallbackCredentialStore を作成する
func NewFallbackCredentialStore(primary, fallback CredentialStore) *FallbackCredentialStore {
	return &FallbackCredentialStore{primary: primary, fallback: fallback}
}

func (s *FallbackCredentialStore) Get(ctx context.Context) (mo.Option[string], error) {
	cred, err := s.primary.Get(ctx)
	if err != nil {
		return mo.None[string](), err
	}
	if cred.IsPresent() || s.fallback == nil {
		return cred, nil
	}
	return s.fallback.Get(ctx)
}

func (s *FallbackCredentialStore) Save(ctx context.Context, credential string) error {
	return s.primary.Save(ctx, credential)
}
