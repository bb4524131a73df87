package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "collapses whitespace", input: "  a \n\n b\t c  ", expected: "a b c"},
		{name: "strips bidi marks", input: "‎Harper‏ Collins‬", expected: "Harper Collins"},
		{name: "strips leading and trailing colons", input: " : 三联书店 ：", expected: "三联书店"},
		{name: "keeps inner colons", input: "Title: Subtitle", expected: "Title: Subtitle"},
		{name: "ideographic space", input: "作者　余华", expected: "作者 余华"},
		{name: "mark between spaces", input: "a ‎ b", expected: "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Clean(tt.input))
		})
	}
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		": : a : :",
		"‎‏‪‫‬‭‮",
		"出版社:  人民文学出版社 \r\n",
		"a​­ b",
		"：：书名：：",
		"\x00\x01 mixed\tcontrol\x7f chars",
	}

	for _, in := range inputs {
		once := Clean(in)
		assert.Equal(t, once, Clean(once), "input %q", in)
	}
}

func TestExtractYear(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"2012年5月", "2012"},
		{"出版日期: 1999-03", "1999"},
		{"March 3, 2004", "2004"},
		{"9999", "9999"},
		{"no digits here", ""},
		{"12年", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractYear(tt.input))
		})
	}
}

func TestNormalizeISBN(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "hyphenated isbn-13", input: "978-7-100-01000-1", expected: "9787100010001"},
		{name: "isbn-10 with trailing X", input: "0-8044-2957-X", expected: "080442957X"},
		{name: "lowercase x", input: "080442957x", expected: "080442957X"},
		{name: "too short", input: "12345", expected: ""},
		{name: "eleven digits", input: "12345678901", expected: ""},
		{name: "X in the middle", input: "08044X29571", expected: ""},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeISBN(tt.input))
		})
	}
}

func TestIsProse(t *testing.T) {
	assert.False(t, IsProse("太短了"))
	assert.False(t, IsProse("   12345678901234567890   "))
	assert.True(t, IsProse("这是一段足够长的内容简介，用来描述这本书讲了什么故事。"))
}

func TestCJKRatio(t *testing.T) {
	assert.Equal(t, 0.0, CJKRatio(""))
	assert.Equal(t, 1.0, CJKRatio("三国演义"))
	assert.InDelta(t, 0.5, CJKRatio("水浒ab"), 0.001)

	assert.True(t, IsChinese("天才在左疯子在右"))
	assert.True(t, IsChinese("三国 Vol"))
	assert.False(t, IsChinese("The Three Kingdoms 三"))
	assert.False(t, IsChinese("Harry Potter"))
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", FirstNonEmpty("", "  ", " b ", "c"))
	assert.Equal(t, "", FirstNonEmpty())
}
