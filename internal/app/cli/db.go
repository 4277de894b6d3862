package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/urfave/cli/v3"

	"github.com/jinford/safety-rag/internal/infra/postgres"
	"github.com/jinford/safety-rag/internal/platform/database"
)

// DBMigrateAction はスキーマを作成するコマンドのアクション
func DBMigrateAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	_, err = database.Transact(ctx, appCtx.Container.Database(), func(tx pgx.Tx) (struct{}, error) {
		return struct{}{}, postgres.Migrate(ctx, tx)
	})
	if err != nil {
		return fmt.Errorf("マイグレーションに失敗: %w", err)
	}

	appCtx.Logger().Info("マイグレーションが完了しました")
	fmt.Println("✓ スキーマを作成しました")
	return nil
}
