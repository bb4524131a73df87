package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newLoginCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the image host and store the API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			in := newPrompter(cmd.InOrStdin(), w)

			fmt.Fprintln(w, "图床登录")
			fmt.Fprintln(w, strings.Repeat("-", 20))

			if email == "" {
				email, _ = in.ask("请输入邮箱: ")
			}
			if email == "" {
				email = app.Email
			}
			if password == "" {
				password = readPassword(cmd, in)
			}
			if password == "" {
				password = app.Password
			}

			if _, err := app.Auth.LoginWith(commandContext(cmd), email, password); err != nil {
				fmt.Fprintln(w, "\n登录失败，请检查邮箱和密码是否正确")
				return err
			}
			fmt.Fprintln(w, "\n登录成功！")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "image host account email")
	cmd.Flags().StringVar(&password, "password", "", "image host account password")
	return cmd
}

// readPassword reads without echo when stdin is a terminal and falls back to
// a plain line otherwise.
func readPassword(cmd *cobra.Command, in *prompter) string {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.OutOrStdout(), "请输入密码: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(b))
	}
	password, _ := in.ask("请输入密码: ")
	return password
}
