package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/mo"
	"github.com/urfave/cli/v3"

	"github.com/jinford/safety-rag/internal/core/chat"
)

// AskAction は1回分の質問に回答するコマンドのアクション
func AskAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	showSources := cmd.Bool("show-sources")

	message := strings.Join(cmd.Args().Slice(), " ")
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("質問文を指定してください")
	}

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	cc := chat.ConversationContext{Prior: priorTurn(cmd.String("prior-user"), cmd.String("prior-assistant"))}

	appCtx.Logger().Info("質問応答を開始", "followUpContext", cc.Prior.IsPresent())
	reply := appCtx.Container.ChatService.Respond(ctx, message, cc)

	printReply(os.Stdout, reply, showSources)
	return nil
}

// TitleAction は最初のメッセージからチャットタイトルを表示する
func TitleAction(ctx context.Context, cmd *cli.Command) error {
	fmt.Println(chat.GenerateChatTitle(strings.Join(cmd.Args().Slice(), " ")))
	return nil
}

func priorTurn(user, assistant string) mo.Option[chat.ConversationTurn] {
	if strings.TrimSpace(user) == "" && strings.TrimSpace(assistant) == "" {
		return mo.None[chat.ConversationTurn]()
	}
	return mo.Some(chat.ConversationTurn{UserText: user, AssistantText: assistant})
}

func printReply(w io.Writer, reply chat.Reply, showSources bool) {
	fmt.Fprintln(w, reply.Text)

	if !showSources || len(reply.Sources) == 0 {
		return
	}
	fmt.Fprintf(w, "\n--- 参照ソース (%s) ---\n", reply.Strategy)
	for i, source := range reply.Sources {
		fmt.Fprintf(w, "[%d] %s\n", i+1, source)
	}
}
