package enrichment

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"github.com/JaimeStill/pitchcraft/internal/projects"
)

const (
	maxHeadings   = 10
	minTextLength = 20
)

type website struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

// NewWebsite creates an Enricher that fetches the profile's website and
// extracts its title, meta description, meta keywords, and the first
// substantial headings and paragraphs. Profiles without a website produce no
// facts.
func NewWebsite(client *http.Client, userAgent string, maxBytes int64) Enricher {
	if client == nil {
		client = http.DefaultClient
	}
	return &website{
		client:    client,
		userAgent: userAgent,
		maxBytes:  maxBytes,
	}
}

func (w *website) Enrich(ctx context.Context, profile projects.ClientProfile) (map[string]string, error) {
	if profile.Website == "" {
		return map[string]string{}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, profile.Website, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrEnrichment, err)
	}
	if w.userAgent != "" {
		req.Header.Set("User-Agent", w.userAgent)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %w", ErrEnrichment, profile.Website, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: fetch %s: status %d", ErrEnrichment, profile.Website, resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if w.maxBytes > 0 {
		body = io.LimitReader(resp.Body, w.maxBytes)
	}

	doc, err := html.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrEnrichment, profile.Website, err)
	}

	return namespaced("website", extract(doc)), nil
}

func extract(doc *html.Node) map[string]string {
	facts := make(map[string]string)
	var texts []string

	for n := range doc.Descendants() {
		if n.Type != html.ElementNode {
			continue
		}

		switch n.Data {
		case "title":
			if _, ok := facts["title"]; !ok {
				facts["title"] = textOf(n)
			}
		case "meta":
			name := strings.ToLower(attr(n, "name"))
			if name == "" {
				name = strings.ToLower(attr(n, "property"))
			}
			switch name {
			case "description", "og:description":
				if _, ok := facts["description"]; !ok {
					facts["description"] = attr(n, "content")
				}
			case "keywords":
				facts["keywords"] = attr(n, "content")
			}
		case "h1", "h2", "h3", "p":
			if len(texts) >= maxHeadings {
				continue
			}
			if t := textOf(n); len([]rune(t)) > minTextLength {
				texts = append(texts, t)
			}
		}
	}

	if len(texts) > 0 {
		facts["highlights"] = strings.Join(texts, " | ")
	}
	return facts
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	for d := range n.Descendants() {
		if d.Type == html.TextNode {
			sb.WriteString(d.Data)
			sb.WriteString(" ")
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
