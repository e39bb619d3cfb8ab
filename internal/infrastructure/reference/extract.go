package reference

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/preciolens/backend/internal/domain"
)

// selector picks text, or an attribute when attr is set, from the first match of css.
type selector struct {
	css  string
	attr string
}

// Selector lists are tried in order; the first non-empty value wins.
// The first entry of name and price is the exact layout path of the product page,
// the rest are looser fallbacks for when the layout drifts.
var (
	nameSelectors = []selector{
		{css: `body > main > div > div.max-w-5xl.w-full.bg-white.p-8.md\:p-4.shadow-xl.mb-8 > div.flex.items-center.md\:flex-row.gap-4.w-full.flex-col.md\:p-4 > div.flex.flex-col.justify-center > h1`},
		{css: "main h1"},
		{css: "h1"},
		{css: `meta[property="og:title"]`, attr: "content"},
	}

	priceSelectors = []selector{
		{css: `body > main > div > div.max-w-5xl.w-full.bg-white.p-8.md\:p-4.shadow-xl.mb-8 > div.md\:p-4.mt-4 > div > div > div.flex.flex-col.md\:flex-row.items-center.justify-between.gap-4.mt-8 > div > h3`},
		{css: "main h3"},
		{css: "[data-price]", attr: "data-price"},
	}

	imageSelectors = []selector{
		{css: `meta[property="og:image"]`, attr: "content"},
		{css: "main img", attr: "src"},
	}

	descriptionSelectors = []selector{
		{css: `meta[name="description"]`, attr: "content"},
		{css: `meta[property="og:description"]`, attr: "content"},
		{css: "main p"},
	}
)

func extract(doc *goquery.Document, pageURL *url.URL) *domain.ScrapeResult {
	result := &domain.ScrapeResult{
		ProductName:  firstMatch(doc, nameSelectors),
		RawPriceText: firstMatch(doc, priceSelectors),
		ImageURL:     resolveURL(pageURL, firstMatch(doc, imageSelectors)),
		Description:  firstMatch(doc, descriptionSelectors),
	}

	if result.ProductName == "" {
		result.ProductName = domain.NameNotFound
	}
	if result.RawPriceText == "" {
		result.RawPriceText = domain.PriceNotFound
	}

	return result
}

func firstMatch(doc *goquery.Document, selectors []selector) string {
	for _, sel := range selectors {
		node := doc.Find(sel.css).First()
		if node.Length() == 0 {
			continue
		}

		var value string
		if sel.attr != "" {
			value, _ = node.Attr(sel.attr)
		} else {
			value = node.Text()
		}

		value = strings.Join(strings.Fields(value), " ")
		if value != "" {
			return value
		}
	}
	return ""
}

// resolveURL makes relative image sources absolute against the page they came from.
func resolveURL(base *url.URL, ref string) string {
	if ref == "" || base == nil {
		return ref
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(parsed).String()
}
