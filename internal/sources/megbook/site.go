package megbook

import (
	"regexp"

	"github.com/mrlokans/bookfetch/internal/entities"
	"github.com/mrlokans/bookfetch/internal/extract"
)

// Site holds everything that differs between the Hong Kong and Taiwan
// storefronts. Both run the same shop software.
type Site struct {
	ID    entities.SourceID
	Label string

	SearchURL string
	// DetailPrefix filters search-result links down to product pages.
	DetailPrefix string
	Referer      string
	// Currency prefixes the price, e.g. "HK$".
	Currency string

	// PatternTitleFirst tries the page-wide title patterns before the table scan.
	PatternTitleFirst bool
	// LinkDouban fills BookDetail.DoubanURL from the ISBN.
	LinkDouban bool

	descriptionSections extract.Sections
	introSections       extract.Sections
	descriptionCut      []string
	introCut            []string

	price extract.Patterns
}

var shopBoilerplate = []string{"書城介紹", "Copyright"}

var twBoilerplate = []string{
	"目錄", "內容試閱", "更多相關圖書", "書城介紹", "Copyright",
	"megBook.com.tw", "聯絡方式", "送貨方式", "付款方式",
}

// HK is megbook.hk.
var HK = Site{
	ID:           entities.SourceMegbookHK,
	Label:        "香港美国书店",
	SearchURL:    "http://search.megbook.hk/mall/search.jsp",
	DetailPrefix: "http://www.megbook.hk/mall/detail.jsp",
	Referer:      "http://www.megbook.hk/",
	Currency:     "HK$",

	descriptionSections: extract.Sections{
		extract.S(`【内容简介】`, "【", "書城介紹"),
		extract.S(`內容簡介[：:]`, "作者簡介", "關於作者", "書城介紹"),
		extract.S(`内容简介[：:]`, "作者简介", "关于作者", "書城介紹"),
		extract.S(`簡介[：:]`, "作者簡介", "關於作者", "書城介紹"),
	},
	introSections:  introSections("【"),
	descriptionCut: shopBoilerplate,
	introCut:       shopBoilerplate,
	price:          pricePatterns("HK$"),
}

// TW is megbook.com.tw.
var TW = Site{
	ID:                entities.SourceMegbookTW,
	Label:             "台湾美国书店",
	SearchURL:         "http://search.megbook.com.tw/mall/search.jsp",
	DetailPrefix:      "http://www.megbook.com.tw/mall/detail.jsp",
	Referer:           "http://www.megbook.com.tw/",
	Currency:          "NT$",
	PatternTitleFirst: true,
	LinkDouban:        true,

	descriptionSections: extract.Sections{
		extract.S(`【内容简介】`, "【作者简介】", "【", "書城介紹"),
		extract.S(`內容簡介[：:]`, "作者簡介", "關於作者", "書城介紹"),
		extract.S(`内容简介[：:]`, "作者简介", "关于作者", "書城介紹"),
		extract.S(`簡介[：:]`, "作者簡介", "關於作者", "書城介紹"),
	},
	introSections:  introSections("【内容简介】", "【"),
	descriptionCut: append([]string{"關於作者", "本書特色："}, twBoilerplate...),
	introCut:       twBoilerplate,
	price:          pricePatterns("NT$"),
}

func introSections(bracketStops ...string) extract.Sections {
	return extract.Sections{
		extract.S(`【作者简介】`, append(bracketStops, "書城介紹")...),
		extract.S(`作者簡介[：:]`, "內容簡介", "書城介紹"),
		extract.S(`作者简介[：:]`, "内容简介", "書城介紹"),
		extract.S(`關於作者[：:]`, "內容簡介", "書城介紹"),
		extract.S(`关于作者[：:]`, "内容简介", "書城介紹"),
	}
}

func pricePatterns(currency string) extract.Patterns {
	amount := `(` + regexp.QuoteMeta(currency) + `\s*[\d.]+)`
	return extract.Patterns{
		extract.P(`售價[：:]\s*` + amount),
		extract.P(`定價[：:]\s*` + amount),
	}
}
