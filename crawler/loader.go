package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/lukemcguire/linkaudit/urlutil"
)

// ErrDocumentLoad marks a page whose source document could not be fetched
// or parsed. It is fatal for that page only.
var ErrDocumentLoad = errors.New("load document")

// LoadPage fetches pageURL and parses it into a document. The returned base
// is the URL relative links on the page resolve against: the final request
// URL, or the document's <base href> when it has one.
func LoadPage(ctx context.Context, client *http.Client, pageURL *url.URL, userAgent string) (doc *goquery.Document, base *url.URL, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%w %s: %w", ErrDocumentLoad, pageURL, err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w %s: %w", ErrDocumentLoad, pageURL, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("%w %s: close response body: %w", ErrDocumentLoad, pageURL, closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, fmt.Errorf("%w %s: unexpected status %s", ErrDocumentLoad, pageURL, resp.Status)
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, nil, fmt.Errorf("%w %s: detect charset: %w", ErrDocumentLoad, pageURL, err)
	}

	doc, err = goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, nil, fmt.Errorf("%w %s: parse html: %w", ErrDocumentLoad, pageURL, err)
	}

	base = resp.Request.URL
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok && href != "" {
		if resolved, resolveErr := urlutil.Resolve(base, href); resolveErr == nil {
			base = resolved
		}
	}
	doc.Url = base

	return doc, base, nil
}
