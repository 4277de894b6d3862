package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	appcli "github.com/jinford/safety-rag/internal/app/cli"
	"github.com/jinford/safety-rag/internal/platform/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 設定読み込み前のログは既定設定で出す
	logger.New(logger.DefaultConfig())

	envFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:  "env",
			Usage: "環境変数ファイルパス",
			Value: ".env",
		}
	}

	app := &cli.Command{
		Name:  "safety-rag",
		Usage: "労働安全衛生ドキュメント向けセルビア語 RAG チャット",
		Commands: []*cli.Command{
			{
				Name:      "ask",
				Usage:     "質問に回答する",
				ArgsUsage: "<質問文>",
				Flags: []cli.Flag{
					envFlag(),
					&cli.BoolFlag{
						Name:  "show-sources",
						Usage: "参照ソースを表示",
					},
					&cli.StringFlag{
						Name:  "prior-user",
						Usage: "直前のユーザー発話（続きを求める場合）",
					},
					&cli.StringFlag{
						Name:  "prior-assistant",
						Usage: "直前のアシスタント応答（続きを求める場合）",
					},
				},
				Action: appcli.AskAction,
			},
			{
				Name:      "title",
				Usage:     "最初のメッセージからチャットタイトルを生成",
				ArgsUsage: "<メッセージ>",
				Action:    appcli.TitleAction,
			},
			{
				Name:  "document",
				Usage: "ドキュメント管理コマンド",
				Commands: []*cli.Command{
					{
						Name:  "ingest",
						Usage: "テキストまたはPDFファイルを登録",
						Flags: []cli.Flag{
							envFlag(),
							&cli.StringFlag{
								Name:     "file",
								Usage:    "登録するファイルパス（.txt / .pdf）",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "name",
								Usage: "ドキュメント名（省略時はファイル名）",
							},
						},
						Action: appcli.DocumentIngestAction,
					},
					{
						Name:   "list",
						Usage:  "ドキュメント一覧を表示",
						Flags:  []cli.Flag{envFlag()},
						Action: appcli.DocumentListAction,
					},
				},
			},
			{
				Name:  "credential",
				Usage: "APIキー管理コマンド",
				Commands: []*cli.Command{
					{
						Name:  "set",
						Usage: "OpenAI APIキーを保存",
						Flags: []cli.Flag{
							envFlag(),
							&cli.StringFlag{
								Name:     "key",
								Usage:    "OpenAI APIキー",
								Required: true,
							},
						},
						Action: appcli.CredentialSetAction,
					},
				},
			},
			{
				Name:  "server",
				Usage: "HTTPサーバコマンド",
				Commands: []*cli.Command{
					{
						Name:  "start",
						Usage: "HTTPサーバを起動",
						Flags: []cli.Flag{
							envFlag(),
							&cli.IntFlag{
								Name:  "port",
								Usage: "待ち受けポート（省略時は HTTP_PORT）",
							},
						},
						Action: appcli.ServerStartAction,
					},
				},
			},
			{
				Name:  "db",
				Usage: "データベース管理コマンド",
				Commands: []*cli.Command{
					{
						Name:   "migrate",
						Usage:  "スキーマを作成",
						Flags:  []cli.Flag{envFlag()},
						Action: appcli.DBMigrateAction,
					},
				},
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
