package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// CredentialSetAction は OpenAI API キーを保存するコマンドのアクション
func CredentialSetAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	key := cmd.String("key")

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	if err := appCtx.Container.ChatService.SaveCredential(ctx, key); err != nil {
		return err
	}

	fmt.Println("✓ APIキーを保存しました")
	return nil
}
