package entities

// SourceID identifies one of the metadata sources.
type SourceID string

const (
	SourceDouban    SourceID = "douban"
	SourceMegbookHK SourceID = "megbookhk"
	SourceMegbookTW SourceID = "megbooktw"
	SourceAmazon    SourceID = "amazon"
	SourceGoogle    SourceID = "google"
)

// BookSummary is a single search-result row. Locator is only meaningful to the
// source that produced it.
type BookSummary struct {
	Locator  string `json:"locator"`
	Title    string `json:"title"`
	Author   string `json:"author,omitempty"` // comma-joined when multiple
	Press    string `json:"press,omitempty"`
	Year     string `json:"year,omitempty"` // bare 4 digits
	CoverURL string `json:"cover_url,omitempty"`
}

// BookDetail is the full record returned by a details lookup.
type BookDetail struct {
	BookSummary

	ISBN        string `json:"isbn,omitempty"` // 10 or 13 chars, digits or trailing X
	Pages       string `json:"pages,omitempty"`
	Price       string `json:"price,omitempty"`
	Description string `json:"description,omitempty"`
	AuthorIntro string `json:"author_intro,omitempty"`

	// URL is the human-facing page of the record on its source.
	URL string `json:"url,omitempty"`
	// DoubanURL links the record to its Douban ISBN page when an ISBN is known.
	DoubanURL string `json:"douban_url,omitempty"`
}

// HasTitle reports whether the record carries the one field it cannot live without.
func (b *BookDetail) HasTitle() bool {
	return b != nil && b.Title != ""
}
