package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mrlokans/bookfetch/internal/config"
	"github.com/mrlokans/bookfetch/internal/entities"
	"github.com/mrlokans/bookfetch/internal/entrypoint"
	"github.com/mrlokans/bookfetch/internal/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	name     string
	label    string
	results  []entities.BookSummary
	details  map[string]*entities.BookDetail
	keywords []string
	lookups  []string
}

func (s *stubAdapter) Name() string  { return s.name }
func (s *stubAdapter) Label() string { return s.label }

func (s *stubAdapter) Search(_ context.Context, keyword string) []entities.BookSummary {
	s.keywords = append(s.keywords, keyword)
	return s.results
}

func (s *stubAdapter) Details(_ context.Context, locator string) *entities.BookDetail {
	s.lookups = append(s.lookups, locator)
	d, ok := s.details[locator]
	if !ok {
		return nil
	}
	copied := *d
	return &copied
}

type stubCovers struct {
	calls int
	url   string
}

func (s *stubCovers) Process(_ context.Context, d *entities.BookDetail) bool {
	s.calls++
	if s.url == "" {
		return false
	}
	d.CoverURL = s.url
	return true
}

type stubAuth struct {
	email, password string
	err             error
}

func (s *stubAuth) LoginWith(_ context.Context, email, password string) (string, error) {
	s.email, s.password = email, password
	if s.err != nil {
		return "", s.err
	}
	return "tok", nil
}

func threeBody() *entities.BookDetail {
	return &entities.BookDetail{
		BookSummary: entities.BookSummary{
			Title:    "三体",
			Author:   "刘慈欣",
			Press:    "重庆出版社",
			Year:     "2008",
			CoverURL: "https://img.example.com/s1.jpg",
		},
		ISBN:        "9787536692930",
		Pages:       "302",
		Price:       "23.00元",
		Description: "文化大革命如火如荼进行的同时。",
		AuthorIntro: "刘慈欣，中国科幻小说代表作家。",
		URL:         "https://book.douban.com/subject/2567698/",
	}
}

func newTestApp() (*App, *stubAdapter, *stubCovers) {
	douban := &stubAdapter{
		name:  "douban",
		label: "豆瓣图书",
		results: []entities.BookSummary{
			{Locator: "2567698", Title: "三体", Author: "刘慈欣", Press: "重庆出版社", Year: "2008"},
			{Locator: "3066477", Title: "三体II", Author: "刘慈欣"},
		},
		details: map[string]*entities.BookDetail{"2567698": threeBody()},
	}
	google := &stubAdapter{name: "google", label: "Google Books"}
	covers := &stubCovers{}

	return &App{
		Registry: sources.NewRegistry(douban, google),
		Covers:   covers,
		Auth:     &stubAuth{},
	}, douban, covers
}

func execute(t *testing.T, app *App, input string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(app, "test")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name string
		book entities.BookSummary
		want string
	}{
		{
			name: "all fields",
			book: entities.BookSummary{Title: "三体", Author: "刘慈欣", Press: "重庆出版社", Year: "2008"},
			want: "三体 | 作者: 刘慈欣 | 出版社: 重庆出版社 | 出版年份: 2008",
		},
		{
			name: "missing fields are skipped",
			book: entities.BookSummary{Title: "三体", Year: "2008"},
			want: "三体 | 出版年份: 2008",
		},
		{
			name: "title only",
			book: entities.BookSummary{Title: "三体"},
			want: "三体",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summary(tt.book))
		})
	}
}

func TestFormatter_Detail(t *testing.T) {
	var buf bytes.Buffer
	d := threeBody()
	d.Pages = ""

	NewFormatter(&buf).Detail(d)
	out := buf.String()

	assert.Contains(t, out, "书名: 三体\n")
	assert.Contains(t, out, "ISBN: 9787536692930\n")
	assert.Contains(t, out, "图书链接: https://book.douban.com/subject/2567698/\n")
	assert.Contains(t, out, "【内容简介】\n文化大革命如火如荼进行的同时。\n")
	assert.Contains(t, out, "【封面图片】\nhttps://img.example.com/s1.jpg\n")
	assert.NotContains(t, out, "页数")
	assert.Equal(t, 2, strings.Count(out, strings.Repeat("-", 50)))
}

func TestFormatter_DetailNil(t *testing.T) {
	var buf bytes.Buffer
	NewFormatter(&buf).Detail(nil)
	assert.Equal(t, "无法获取图书信息\n", buf.String())
}

func TestSearch_PicksBookAndProcessesCover(t *testing.T) {
	app, douban, covers := newTestApp()
	covers.url = "https://host.example.com/i/abc.jpg"

	out, err := execute(t, app, "1\n三体\n1\n")

	require.NoError(t, err)
	assert.Equal(t, []string{"三体"}, douban.keywords)
	assert.Equal(t, []string{"2567698"}, douban.lookups)
	assert.Equal(t, 1, covers.calls)
	assert.Contains(t, out, "1. 豆瓣图书\n2. Google Books\n0. 退出")
	assert.Contains(t, out, "1. 三体 | 作者: 刘慈欣 | 出版社: 重庆出版社 | 出版年份: 2008")
	assert.Contains(t, out, "2. 三体II | 作者: 刘慈欣")
	assert.Contains(t, out, "封面已上传到: https://host.example.com/i/abc.jpg")
	assert.Contains(t, out, "【封面图片】\nhttps://host.example.com/i/abc.jpg")
	assert.Contains(t, out, "已选择《三体》")
}

func TestSearch_InvalidInputIsReprompted(t *testing.T) {
	app, douban, _ := newTestApp()

	out, err := execute(t, app, "9\nx\n1\n三体\nabc\n7\nb\n0\n", "search")

	require.NoError(t, err)
	assert.Contains(t, out, "无效的选项，请重新选择！")
	assert.Contains(t, out, "请输入有效的数字！")
	assert.Contains(t, out, "无效的序号，请重新选择！")
	assert.Empty(t, douban.lookups)
	assert.NotContains(t, out, "已选择")
}

func TestSearch_NoResultsGoesBackToMenu(t *testing.T) {
	app, _, _ := newTestApp()

	out, err := execute(t, app, "2\n三体\n0\n")

	require.NoError(t, err)
	assert.Contains(t, out, "未找到相关图书")
	assert.Equal(t, 2, strings.Count(out, "请选择搜索源"))
}

func TestSearch_MissingDetailsAsksAgain(t *testing.T) {
	app, douban, covers := newTestApp()

	out, err := execute(t, app, "1\n三体\n2\n1\n")

	require.NoError(t, err)
	assert.Equal(t, []string{"3066477", "2567698"}, douban.lookups)
	assert.Contains(t, out, "无法获取图书详细信息，请尝试其他图书")
	assert.Equal(t, 1, covers.calls)
	assert.NotContains(t, out, "封面已上传到")
	assert.Contains(t, out, "【封面图片】\nhttps://img.example.com/s1.jpg")
}

func TestSearch_EndOfInputQuits(t *testing.T) {
	app, douban, _ := newTestApp()

	_, err := execute(t, app, "1\n")

	require.NoError(t, err)
	assert.Empty(t, douban.keywords)
}

func TestLookup_ListsResults(t *testing.T) {
	app, douban, _ := newTestApp()

	out, err := execute(t, app, "", "lookup", "--source", "douban", "三体", "全集")

	require.NoError(t, err)
	assert.Equal(t, []string{"三体 全集"}, douban.keywords)
	assert.Contains(t, out, "1. 三体 | 作者: 刘慈欣")
	assert.Empty(t, douban.lookups)
}

func TestLookup_PickJSON(t *testing.T) {
	app, _, covers := newTestApp()

	out, err := execute(t, app, "", "lookup", "--pick", "1", "--json", "三体")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "douban", got["source"])
	assert.Equal(t, "三体", got["title"])
	assert.Equal(t, "9787536692930", got["isbn"])
	assert.Equal(t, 1, covers.calls)
}

func TestLookup_NoCoverSkipsPipeline(t *testing.T) {
	app, _, covers := newTestApp()

	_, err := execute(t, app, "", "lookup", "--pick", "1", "--no-cover", "三体")

	require.NoError(t, err)
	assert.Zero(t, covers.calls)
}

func TestLookup_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown source", []string{"lookup", "--source", "nope", "三体"}, "unknown source"},
		{"no results", []string{"lookup", "--source", "google", "三体"}, "no results"},
		{"pick out of range", []string{"lookup", "--pick", "5", "三体"}, "out of range"},
		{"no details", []string{"lookup", "--pick", "2", "三体"}, "no details"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _, _ := newTestApp()
			_, err := execute(t, app, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLookup_UnknownSourceWrapsSentinel(t *testing.T) {
	app, _, _ := newTestApp()
	_, err := execute(t, app, "", "lookup", "--source", "nope", "三体")
	assert.ErrorIs(t, err, sources.ErrUnknownSource)
}

func TestLogin(t *testing.T) {
	t.Run("flags", func(t *testing.T) {
		app, _, _ := newTestApp()
		auth := app.Auth.(*stubAuth)

		out, err := execute(t, app, "", "login", "--email", "me@example.com", "--password", "pw")

		require.NoError(t, err)
		assert.Equal(t, "me@example.com", auth.email)
		assert.Equal(t, "pw", auth.password)
		assert.Contains(t, out, "登录成功！")
	})

	t.Run("prompts", func(t *testing.T) {
		app, _, _ := newTestApp()
		auth := app.Auth.(*stubAuth)

		out, err := execute(t, app, "me@example.com\nsecret\n", "login")

		require.NoError(t, err)
		assert.Equal(t, "me@example.com", auth.email)
		assert.Equal(t, "secret", auth.password)
		assert.Contains(t, out, "请输入邮箱: ")
		assert.Contains(t, out, "请输入密码: ")
	})

	t.Run("blank prompts fall back to configuration", func(t *testing.T) {
		app, _, _ := newTestApp()
		app.Email, app.Password = "cfg@example.com", "cfgpw"
		auth := app.Auth.(*stubAuth)

		_, err := execute(t, app, "\n\n", "login")

		require.NoError(t, err)
		assert.Equal(t, "cfg@example.com", auth.email)
		assert.Equal(t, "cfgpw", auth.password)
	})

	t.Run("failure", func(t *testing.T) {
		app, _, _ := newTestApp()
		app.Auth = &stubAuth{err: errors.New("bad credentials")}

		out, err := execute(t, app, "", "login", "--email", "a@b.c", "--password", "x")

		require.Error(t, err)
		assert.Contains(t, out, "登录失败")
	})
}

func TestServe_RunsServer(t *testing.T) {
	app, _, _ := newTestApp()
	served := false
	app.Serve = func() { served = true }

	_, err := execute(t, app, "", "serve")

	require.NoError(t, err)
	assert.True(t, served)
}

func TestNewAppWith_SharesComponents(t *testing.T) {
	cfg := &config.Config{
		Storage: config.Storage{
			TokenFile:  filepath.Join(t.TempDir(), "token.json"),
			ScratchDir: t.TempDir(),
		},
	}
	c := entrypoint.Build(cfg)

	app := NewAppWith(c, cfg, "test")

	assert.Same(t, c.Registry, app.Registry)
	assert.Same(t, c.Covers, app.Covers)
	assert.Same(t, c.ImageHost, app.Auth)
	assert.NotNil(t, app.Serve)
}
