package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/jinford/safety-rag/internal/core/corpus"
	"github.com/jinford/safety-rag/internal/infra/pdf"
)

// DocumentIngestAction はファイルを読み込んでコーパスに登録するコマンドのアクション
func DocumentIngestAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	filePath := cmd.String("file")
	name := cmd.String("name")

	params, err := loadDocument(filePath, name)
	if err != nil {
		return err
	}

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	result, err := appCtx.Container.CorpusService.Upload(ctx, params)
	if err != nil {
		return fmt.Errorf("ドキュメント登録に失敗: %w", err)
	}

	fmt.Printf("✓ %s を登録しました (ID: %s, チャンク: %d, 埋め込み: %d)\n",
		params.Name, result.DocumentID, result.ChunkCount, result.EmbeddedCount)
	return nil
}

// DocumentListAction は登録済みドキュメントの一覧を表示するコマンドのアクション
func DocumentListAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	docs, err := appCtx.Container.CorpusService.List(ctx)
	if err != nil {
		return fmt.Errorf("ドキュメント一覧の取得に失敗: %w", err)
	}

	if len(docs) == 0 {
		fmt.Println("ドキュメントが登録されていません")
		return nil
	}

	renderDocumentsTable(os.Stdout, docs)
	return nil
}

// loadDocument はファイル拡張子に応じてテキストを取り出す
func loadDocument(filePath, name string) (corpus.UploadParams, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return corpus.UploadParams{}, fmt.Errorf("ファイルの読み込みに失敗: %w", err)
	}
	if name == "" {
		name = filepath.Base(filePath)
	}

	if strings.EqualFold(filepath.Ext(filePath), ".pdf") {
		text, err := pdf.ExtractText(data)
		if err != nil {
			return corpus.UploadParams{}, fmt.Errorf("PDFのテキスト抽出に失敗: %w", err)
		}
		return corpus.UploadParams{Name: name, Content: text, Type: corpus.DocumentTypePDF}, nil
	}

	return corpus.UploadParams{Name: name, Content: string(data), Type: corpus.DocumentTypeTXT}, nil
}

// renderDocumentsTable はテーブル形式でドキュメント一覧を表示します
func renderDocumentsTable(w io.Writer, docs []*corpus.Document) {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Name", "Type", "Chunks", "Uploaded At")

	for _, doc := range docs {
		table.Append(
			doc.ID.String(),
			doc.Name,
			string(doc.Type),
			strconv.Itoa(len(doc.Chunks)),
			doc.UploadedAt.Format("2006-01-02 15:04"),
		)
	}

	table.Render()
}
