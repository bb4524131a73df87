package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mrlokans/bookfetch/internal/entities"
)

var rule = strings.Repeat("-", 50)

// Formatter prints books the way the interactive search shows them.
type Formatter struct {
	w io.Writer
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

// Summary renders a search row: title and whichever of author, press and
// year are known, joined by " | ".
func Summary(b entities.BookSummary) string {
	var parts []string
	if b.Title != "" {
		parts = append(parts, b.Title)
	}
	if b.Author != "" {
		parts = append(parts, "作者: "+b.Author)
	}
	if b.Press != "" {
		parts = append(parts, "出版社: "+b.Press)
	}
	if b.Year != "" {
		parts = append(parts, "出版年份: "+b.Year)
	}
	return strings.Join(parts, " | ")
}

// Results prints numbered search rows starting at 1.
func (f *Formatter) Results(results []entities.BookSummary) {
	fmt.Fprintln(f.w, "\n搜索结果:")
	for i, b := range results {
		fmt.Fprintf(f.w, "\n%d. %s\n", i+1, Summary(b))
	}
}

// Detail prints the full record. Empty fields are left out.
func (f *Formatter) Detail(d *entities.BookDetail) {
	if d == nil {
		fmt.Fprintln(f.w, "无法获取图书信息")
		return
	}

	fmt.Fprintln(f.w, "\n图书详情:")
	fmt.Fprintln(f.w, rule)
	f.line("书名", d.Title)
	f.line("作者", d.Author)
	f.line("出版社", d.Press)
	f.line("出版年份", d.Year)
	f.line("页数", d.Pages)
	f.line("定价", d.Price)
	f.line("ISBN", d.ISBN)
	f.line("图书链接", d.URL)
	f.line("豆瓣链接", d.DoubanURL)
	fmt.Fprintln(f.w, rule)

	f.block("内容简介", d.Description)
	f.block("作者简介", d.AuthorIntro)
	f.block("封面图片", d.CoverURL)
}

func (f *Formatter) line(label, value string) {
	if value != "" {
		fmt.Fprintf(f.w, "%s: %s\n", label, value)
	}
}

func (f *Formatter) block(heading, body string) {
	if body != "" {
		fmt.Fprintf(f.w, "\n【%s】\n%s\n", heading, body)
	}
}

// JSON writes v indented, without escaping CJK or HTML characters.
func (f *Formatter) JSON(v any) error {
	enc := json.NewEncoder(f.w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
