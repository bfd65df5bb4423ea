package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shouni/pixtrix-kit/internal/builder"
	"github.com/shouni/pixtrix-kit/pkg/controller"
	"github.com/shouni/pixtrix-kit/pkg/domain"
	"github.com/shouni/pixtrix-kit/pkg/view"
)

type generateOptions struct {
	Prompt  string
	Aspect  string
	Credits int
	Save    bool
	JPEG    bool
}

var genOpts generateOptions

// generateCmd はフォームを1回送信し、結果のスロットを表示するのだ。
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "プロンプトから画像を2枚生成するのだ。",
	Long: `生成エンドポイントへフォームを送信し、2つのスロットの結果を表示するのだ。
--save を付けると、生成された画像をダウンロード名で保存するのだよ。`,
	RunE: generateCommand,
}

func init() {
	generateCmd.Flags().StringVarP(&genOpts.Prompt, "prompt", "p", "", "生成したい画像の説明なのだ。")
	generateCmd.Flags().StringVarP(&genOpts.Aspect, "aspect", "a", "1:1", "アスペクト比なのだ（1:1, 16:9, 9:16, 4:3, 3:4）。")
	generateCmd.Flags().IntVar(&genOpts.Credits, "credits", -1, "バッジに表示されている残りクレジット（省略時は設定値）なのだ。")
	generateCmd.Flags().BoolVarP(&genOpts.Save, "save", "s", false, "生成された画像を output_dir に保存するのだ。")
	generateCmd.Flags().BoolVar(&genOpts.JPEG, "jpeg", false, "保存時に JPEG へ変換するのだ。")
	_ = generateCmd.MarkFlagRequired("prompt")
}

func generateCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := *appConfig
	if genOpts.Credits >= 0 {
		cfg.Credits = genOpts.Credits
	}

	ep, err := builder.BuildEndpoint(&cfg)
	if err != nil {
		return err
	}
	model := view.NewModel(nil)
	ctrl, err := builder.BuildController(ep, &cfg, model)
	if err != nil {
		return fmt.Errorf("コントローラーの初期化に失敗しました: %w", err)
	}

	out := ctrl.Submit(ctx, domain.GenerationForm{Prompt: genOpts.Prompt, AspectRatio: genOpts.Aspect})
	printOutcome(cmd.OutOrStdout(), model, out)

	if out.Status != controller.StatusSucceeded {
		if redirect := model.Acknowledge(); redirect != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "-> %s\n", redirect)
		}
		return fmt.Errorf("生成できませんでした: %s", out.Kind)
	}

	if genOpts.Save && len(out.Filled()) > 0 {
		saver, err := builder.BuildSaver(ctx, &cfg, genOpts.JPEG)
		if err != nil {
			return err
		}
		saved, err := saver.SaveAll(ctx, out.Slots, cfg.OutputDir)
		if err != nil {
			return fmt.Errorf("画像の保存に失敗しました: %w", err)
		}
		for _, s := range saved {
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%d bytes)\n", s.Path, s.Size)
		}
	}

	slog.InfoContext(ctx, "生成コマンドが完了したのだ", "images", len(out.Filled()), "credits", ctrl.Balance())
	return nil
}

func printOutcome(w io.Writer, model *view.Model, out controller.Outcome) {
	snap := model.Snapshot()
	fmt.Fprintf(w, "status: %s\n", out.Status)
	fmt.Fprintln(w, model.CreditTooltip())
	for _, s := range snap.Slots {
		switch s.State {
		case domain.SlotFilled:
			fmt.Fprintf(w, "[%d] %s -> %s\n", s.Number(), s.DownloadName(), preview(s.URL))
		default:
			fmt.Fprintf(w, "[%d] %s\n", s.Number(), s.State)
		}
	}
	if snap.Notice != nil {
		fmt.Fprintf(w, "%s: %s\n", snap.Notice.Title, snap.Notice.Message)
	}
}

// preview は長い data URL を表示用に切り詰めます。
func preview(url string) string {
	const max = 64
	if len(url) <= max {
		return url
	}
	return url[:max] + "..."
}
