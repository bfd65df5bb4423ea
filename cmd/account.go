package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/shouni/pixtrix-kit/internal/builder"
	"github.com/shouni/pixtrix-kit/pkg/account"
	"github.com/shouni/pixtrix-kit/pkg/domain"
)

var (
	deleteConfirmed bool

	signupForm account.SignupForm
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "アカウントを管理するのだ。",
}

var usernameCmd = &cobra.Command{
	Use:   "username <name>",
	Short: "ユーザー名を変更するのだ。",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := accountClient()
		if err != nil {
			return err
		}
		res, err := client.ChangeUsername(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return report(cmd.OutOrStdout(), res, "Username updated successfully!")
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "アカウントと生成した画像をすべて削除するのだ。",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !deleteConfirmed {
			return errors.New("この操作は取り消せないのだ。実行するには --yes を付けてほしいのだ")
		}
		client, err := accountClient()
		if err != nil {
			return err
		}
		res, err := client.DeleteAccount(cmd.Context())
		if err != nil {
			return err
		}
		return report(cmd.OutOrStdout(), res, "Account deleted. You will be redirected.")
	},
}

var codeCmd = &cobra.Command{
	Use:   "code <email>",
	Short: "新規登録用の認証コードをメールで受け取るのだ。",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := accountClient()
		if err != nil {
			return err
		}
		res, err := client.SendVerificationCode(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return report(cmd.OutOrStdout(), res, "")
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "新しいアカウントを作成するのだ。",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := accountClient()
		if err != nil {
			return err
		}
		res, err := client.Signup(cmd.Context(), signupForm)
		if err != nil {
			return err
		}
		return report(cmd.OutOrStdout(), res, "")
	},
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteConfirmed, "yes", "y", false, "確認なしで削除するのだ。")
	accountCmd.AddCommand(usernameCmd, deleteCmd)

	signupCmd.Flags().StringVar(&signupForm.Username, "username", "", "ユーザー名なのだ。")
	signupCmd.Flags().StringVar(&signupForm.Email, "email", "", "メールアドレスなのだ。")
	signupCmd.Flags().StringVar(&signupForm.Password, "password", "", "8文字以上のパスワードなのだ。")
	signupCmd.Flags().StringVar(&signupForm.ConfirmPassword, "confirm", "", "確認用のパスワードなのだ。")
	signupCmd.Flags().StringVar(&signupForm.Code, "code", "", "メールで届いた認証コードなのだ。")
}

func accountClient() (*account.Client, error) {
	ep, err := builder.BuildEndpoint(appConfig)
	if err != nil {
		return nil, err
	}
	return builder.BuildAccountClient(ep, appConfig)
}

// report はサーバーの結果を表示し、失敗ならエラーにするのだ。
func report(w io.Writer, res *domain.APIResult, success string) error {
	if !res.Success {
		return errors.New(res.Message)
	}
	fmt.Fprintln(w, res.MessageOr(success))
	if res.RedirectURL != "" {
		fmt.Fprintf(w, "-> %s\n", res.RedirectURL)
	}
	return nil
}
