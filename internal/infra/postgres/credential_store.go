package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/samber/mo"

	"github.com/jinford/safety-rag/internal/core/chat"
)

// CredentialKey は admin_settings 上の補完サービスAPIキーの行キー
const CredentialKey = "openai_api_key"

const (
	getSettingSQL = `SELECT setting_value FROM admin_settings WHERE setting_key = $1`

	upsertSettingSQL = `
INSERT INTO admin_settings (setting_key, setting_value, updated_at)
VALUES ($1, $2, NOW() AT TIME ZONE 'utc')
ON CONFLICT (setting_key) DO UPDATE
SET setting_value = EXCLUDED.setting_value, updated_at = EXCLUDED.updated_at`
)

// CredentialStore は chat.CredentialStore を admin_settings テーブルで実装する
type CredentialStore struct {
	db  DBTX
	key string
}

// NewCredentialStore は新しい CredentialStore を作成する
func NewCredentialStore(db DBTX) *CredentialStore {
	return &CredentialStore{db: db, key: CredentialKey}
}

var _ chat.CredentialStore = (*CredentialStore)(nil)

func (s *CredentialStore) Get(ctx context.Context) (mo.Option[string], error) {
	var value string
	err := s.db.QueryRow(ctx, getSettingSQL, s.key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return mo.None[string](), nil
		}
		return mo.None[string](), fmt.Errorf("failed to get credential: %w", err)
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return mo.None[string](), nil
	}
	return mo.Some(value), nil
}

func (s *CredentialStore) Save(ctx context.Context, credential string) error {
	if _, err := s.db.Exec(ctx, upsertSettingSQL, s.key, credential); err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}
