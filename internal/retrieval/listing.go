// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieval

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/pdiddy/paper-scout/internal/httputil"
	"github.com/pdiddy/paper-scout/pkg/types"
)

// listingBase is the arXiv search listing page. Declared as a var so
// tests can substitute an httptest server.
var listingBase = "https://arxiv.org/search/"

// ListingSource scrapes the arXiv search results page. It is the primary
// retrieval strategy: the listing accepts full boolean queries and
// returns richer snippets than the Atom API.
type ListingSource struct {
	Client    *http.Client
	UserAgent string
}

// Name returns the source identifier.
func (s *ListingSource) Name() string { return "arxiv-listing" }

var (
	reSubmitted = regexp.MustCompile(`Submitted\s+(\d{1,2} \w+,? \d{4})`)
	reVersion   = regexp.MustCompile(`v\d+$`)
)

// Fetch downloads the listing page for query and parses each result into
// a PaperRecord. Malformed entries are skipped, not errors.
func (s *ListingSource) Fetch(ctx context.Context, query string, maxResults int) ([]types.PaperRecord, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty arXiv query")
	}
	if maxResults <= 0 {
		maxResults = 20
	}

	params := url.Values{
		"query":      {query},
		"searchtype": {"all"},
		"abstracts":  {"show"},
		"order":      {"-announced_date_first"},
		"size":       {strconv.Itoa(maxResults)},
	}
	reqURL := listingBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("arXiv listing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv listing returned HTTP %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing arXiv listing: %w", err)
	}

	var records []types.PaperRecord
	for _, li := range findAll(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "li" && hasClass(n, "arxiv-result")
	}) {
		if r, ok := parseResult(li); ok {
			records = append(records, r)
		}
		if len(records) >= maxResults {
			break
		}
	}
	return keepValid(records), nil
}

// parseResult extracts one paper from an <li class="arxiv-result"> node.
func parseResult(li *html.Node) (types.PaperRecord, bool) {
	var r types.PaperRecord

	if title := findFirst(li, elemWithClass("p", "title")); title != nil {
		r.Title = collapseSpaces(strings.TrimPrefix(strings.TrimSpace(nodeText(title)), "Title:"))
	}

	if listTitle := findFirst(li, elemWithClass("p", "list-title")); listTitle != nil {
		if a := findFirst(listTitle, elem("a")); a != nil {
			r.ID = idFromAbsURL(attr(a, "href"))
		}
	}

	if authors := findFirst(li, elemWithClass("p", "authors")); authors != nil {
		text := strings.TrimSpace(nodeText(authors))
		text = strings.TrimSpace(strings.TrimPrefix(text, "Authors:"))
		for _, name := range strings.Split(text, ",") {
			if name = collapseSpaces(name); name != "" {
				r.Authors = append(r.Authors, name)
			}
		}
	}

	if abs := findFirst(li, elemWithClass("span", "abstract-full")); abs != nil {
		r.Summary = collapseSpaces(nodeText(abs))
	} else if abs := findFirst(li, elemWithClass("p", "abstract")); abs != nil {
		r.Summary = collapseSpaces(strings.TrimPrefix(strings.TrimSpace(nodeText(abs)), "Abstract:"))
	}
	// The expanded abstract carries a trailing collapse control.
	r.Summary = strings.TrimSpace(strings.TrimSuffix(r.Summary, "△ Less"))

	if meta := findFirst(li, elemWithClass("p", "is-size-7")); meta != nil {
		if m := reSubmitted.FindStringSubmatch(nodeText(meta)); m != nil {
			raw := strings.ReplaceAll(m[1], ",", "")
			if t, err := time.Parse("2 January 2006", raw); err == nil {
				r.PublishedDate = t.Format("2006-01-02")
				r.Year = t.Year()
			}
		}
	}

	if r.ID != "" {
		r.PDFURL = fmt.Sprintf("https://arxiv.org/pdf/%s.pdf", r.ID)
	}
	r.Venue = "arXiv"

	return r, r.Valid()
}

// idFromAbsURL extracts "1706.03762" from ".../abs/1706.03762v2".
func idFromAbsURL(href string) string {
	if href == "" {
		return ""
	}
	id := href[strings.LastIndex(href, "/")+1:]
	return reVersion.ReplaceAllString(id, "")
}

// --- minimal HTML helpers ---

func elem(name string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == name
	}
}

func elemWithClass(name, class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == name && hasClass(n, class)
	}
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func findFirst(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if pred(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, pred); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	if pred(n) {
		out = append(out, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, findAll(c, pred)...)
	}
	return out
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
