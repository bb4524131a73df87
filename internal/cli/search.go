package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mrlokans/bookfetch/internal/entities"
	"github.com/mrlokans/bookfetch/internal/sources"
	"github.com/spf13/cobra"
)

func newSearchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "search",
		Short: "Pick a source, search it and show the details of one book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := &session{
				app: app,
				in:  newPrompter(cmd.InOrStdin(), cmd.OutOrStdout()),
				out: NewFormatter(cmd.OutOrStdout()),
				w:   cmd.OutOrStdout(),
			}
			s.run(commandContext(cmd))
			return nil
		},
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

type prompter struct {
	sc *bufio.Scanner
	w  io.Writer
}

func newPrompter(r io.Reader, w io.Writer) *prompter {
	return &prompter{sc: bufio.NewScanner(r), w: w}
}

// ask prints question and reads one trimmed line. It reports false once the
// input is exhausted.
func (p *prompter) ask(question string) (string, bool) {
	fmt.Fprint(p.w, question)
	if !p.sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(p.sc.Text()), true
}

// session is one run of the interactive search. It ends when the user quits,
// input runs out, or a book's details have been shown.
type session struct {
	app *App
	in  *prompter
	out *Formatter
	w   io.Writer
}

func (s *session) run(ctx context.Context) {
	for {
		adapter, ok := s.selectSource()
		if !ok {
			return
		}

		keyword, ok := s.in.ask("\n请输入搜索关键词: ")
		if !ok {
			return
		}
		if keyword == "" {
			continue
		}

		fmt.Fprintf(s.w, "\n正在搜索 %s...\n", keyword)
		results := adapter.Search(ctx, keyword)
		if len(results) == 0 {
			fmt.Fprintln(s.w, "未找到相关图书")
			continue
		}
		s.out.Results(results)

		detail, eof := s.pick(ctx, adapter, results)
		if detail != nil {
			fmt.Fprintf(s.w, "\n已选择《%s》\n", detail.Title)
			return
		}
		if eof {
			return
		}
	}
}

// selectSource shows the source menu until a valid choice is made. It
// reports false on 0 or end of input.
func (s *session) selectSource() (sources.Adapter, bool) {
	for {
		fmt.Fprintln(s.w, "\n请选择搜索源：")
		for i, a := range s.app.Registry.All() {
			fmt.Fprintf(s.w, "%d. %s\n", i+1, a.Label())
		}
		fmt.Fprintln(s.w, "0. 退出")

		choice, ok := s.in.ask("请输入选项序号: ")
		if !ok || choice == "0" {
			return nil, false
		}
		if n, err := strconv.Atoi(choice); err == nil {
			if a, ok := s.app.Registry.At(n); ok {
				return a, true
			}
		}
		fmt.Fprintln(s.w, "无效的选项，请重新选择！")
	}
}

// pick asks for a result number until one yields a detail record or the user
// goes back with "b". eof is true when input ran out.
func (s *session) pick(ctx context.Context, adapter sources.Adapter, results []entities.BookSummary) (detail *entities.BookDetail, eof bool) {
	for {
		choice, ok := s.in.ask("\n请选择图书序号（输入 'b' 返回搜索）: ")
		if !ok {
			return nil, true
		}
		if strings.EqualFold(choice, "b") {
			return nil, false
		}

		n, err := strconv.Atoi(choice)
		if err != nil {
			fmt.Fprintln(s.w, "请输入有效的数字！")
			continue
		}
		if n < 1 || n > len(results) {
			fmt.Fprintln(s.w, "无效的序号，请重新选择！")
			continue
		}

		book := results[n-1]
		fmt.Fprintf(s.w, "\n获取《%s》的详细信息...\n", book.Title)
		detail := adapter.Details(ctx, book.Locator)
		if detail == nil {
			fmt.Fprintln(s.w, "无法获取图书详细信息，请尝试其他图书")
			continue
		}

		if s.app.Covers != nil && s.app.Covers.Process(ctx, detail) {
			fmt.Fprintf(s.w, "封面已上传到: %s\n", detail.CoverURL)
		}
		s.out.Detail(detail)
		return detail, false
	}
}
