package crawler

import (
	"iter"

	"github.com/PuerkitoBio/goquery"

	"github.com/lukemcguire/linkaudit/urlutil"
)

// ExtractLinks yields the href of every anchor in doc, in document order.
// Values are passed through exactly as written; relative links stay relative
// and repeated links are yielded once per anchor. Empty hrefs, mailto: links
// and in-page fragments are skipped.
func ExtractLinks(doc *goquery.Document) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, anchor := range doc.Find("a").EachIter() {
			href, ok := anchor.Attr("href")
			if !ok || !urlutil.IsCheckable(href) {
				continue
			}
			if !yield(href) {
				return
			}
		}
	}
}
