package google

import (
	"strings"

	"github.com/mrlokans/bookfetch/internal/utils"
)

type volumeList struct {
	TotalItems int      `json:"totalItems"`
	Items      []volume `json:"items"`
}

type volume struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title               string       `json:"title"`
	Authors             []string     `json:"authors"`
	Publisher           string       `json:"publisher"`
	PublishedDate       string       `json:"publishedDate"`
	Description         string       `json:"description"`
	PageCount           int          `json:"pageCount"`
	IndustryIdentifiers []identifier `json:"industryIdentifiers"`
	ImageLinks          imageLinks   `json:"imageLinks"`
}

type identifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

type imageLinks struct {
	Thumbnail  string `json:"thumbnail"`
	Medium     string `json:"medium"`
	Large      string `json:"large"`
	ExtraLarge string `json:"extraLarge"`
}

// year takes the leading four characters of publishedDate ("2008",
// "2008-01", "2008-01-01").
func (v volumeInfo) year() string {
	if len(v.PublishedDate) < 4 {
		return ""
	}
	return utils.ExtractYear(v.PublishedDate[:4])
}

// isbn prefers ISBN_13 and otherwise tries the first identifier listed.
// Non-ISBN identifiers ("UOM:39015...") normalise to "".
func (v volumeInfo) isbn() string {
	for _, id := range v.IndustryIdentifiers {
		if id.Type == "ISBN_13" {
			return utils.NormalizeISBN(id.Identifier)
		}
	}
	if len(v.IndustryIdentifiers) > 0 {
		return utils.NormalizeISBN(v.IndustryIdentifiers[0].Identifier)
	}
	return ""
}

// best returns the largest rendition, upgraded to https and to the larger
// zoom level.
func (l imageLinks) best() string {
	u := utils.FirstNonEmpty(l.ExtraLarge, l.Large, l.Medium, l.Thumbnail)
	if u == "" {
		return ""
	}
	u = strings.Replace(u, "http://", "https://", 1)
	return strings.Replace(u, "zoom=1", "zoom=3", 1)
}

type authorIntro struct {
	names []string
	intro string
}

// authorIntros covers the classical authors the volumes API never carries a
// biography for.
var authorIntros = []authorIntro{
	{
		names: []string{"施耐庵"},
		intro: "施耐庵（约1296年—约1371年），名彦端，字学士，号子安，汉族，兴化（今江苏兴化）人。元末明初著名小说家、文学家。与罗贯中并称\"罗施\"，是中国四大名著之一《水浒传》的作者。",
	},
	{
		names: []string{"罗贯中"},
		intro: "罗贯中（约1330年—约1400年），名本，字贯中，汉族。元末明初著名小说家、戏曲家。与施耐庵并称\"罗施\"，是中国四大名著之一《三国演义》的作者。",
	},
	{
		names: []string{"高铭", "高銘"},
		intro: "高铭，心理学专业作家，对心理学和精神病学有深入研究。他的作品《天才在左疯子在右》记录了他与近百位精神障碍患者的真实对话，展现了\"正常人\"与\"疯子\"之间的细微差别，引发读者对人性的深度思考。",
	},
}

func knownAuthorIntro(author string) string {
	if author == "" {
		return ""
	}
	for _, entry := range authorIntros {
		for _, name := range entry.names {
			if strings.Contains(author, name) {
				return entry.intro
			}
		}
	}
	return ""
}
