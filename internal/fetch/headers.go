package fetch

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// DefaultHeaders is a desktop Chrome profile biased to Chinese content.
var DefaultHeaders = map[string]string{
	"User-Agent":                chromeUA,
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Accept-Language":           "zh-CN,zh;q=0.9,en;q=0.8",
	"Cache-Control":             "no-cache",
	"Pragma":                    "no-cache",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Sec-Fetch-User":            "?1",
	"Upgrade-Insecure-Requests": "1",
}

// DoubanHeaders is used for both the suggest endpoint and subject pages.
var DoubanHeaders = merge(DefaultHeaders, map[string]string{
	"Referer": "https://book.douban.com/",
	"Accept":  "application/json, text/javascript, text/html, */*; q=0.01",
})

// AmazonHeaders mimics a browser landing on the US storefront.
var AmazonHeaders = merge(DefaultHeaders, map[string]string{
	"Accept-Language": "zh-CN,zh;q=0.9,en-US;q=0.8,en;q=0.7",
	"Referer":         "https://www.amazon.com/",
})

// MegbookHeaders returns the header set for a megbook storefront, with the
// Referer pointing at that storefront's home page.
func MegbookHeaders(referer string) map[string]string {
	return merge(DefaultHeaders, map[string]string{
		"Accept-Language": "zh-TW,zh;q=0.9,zh-CN;q=0.8,en;q=0.7",
		"Referer":         referer,
		"Sec-Fetch-Site":  "same-site",
	})
}

// merge returns a new map holding base overlaid with extra.
func merge(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
