package serpapi

import (
	"context"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/nimbuslab/gtools/internal/providers/fieldres"
)

// NewsSearch queries the google_news engine. It backfills the quote news
// section when the finance payload carried no headlines; failures here are
// returned to the caller, which treats them as a degraded section rather
// than failing the whole invocation.
func (c *Client) NewsSearch(ctx context.Context, query string) ([]NewsItem, error) {
	params := url.Values{}
	params.Set("q", query)

	body, err := c.search(ctx, "google_news", params)
	if err != nil {
		return nil, err
	}

	var items []NewsItem
	for _, n := range gjson.GetBytes(body, "news_results").Array() {
		// Story groups nest the lead article under "highlight".
		if hl := n.Get("highlight"); hl.Exists() {
			n = hl
		}
		items = append(items, NewsItem{
			Title:   fieldres.FirstString(n, "title", "snippet"),
			Source:  fieldres.FirstString(n, "source.name", "source"),
			Date:    n.Get("date").String(),
			Link:    n.Get("link").String(),
			Snippet: n.Get("snippet").String(),
		})
	}
	return items, nil
}
