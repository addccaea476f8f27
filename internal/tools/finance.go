package tools

import (
	"context"
	"log"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nimbuslab/gtools/internal/config"
	"github.com/nimbuslab/gtools/internal/credentials"
	"github.com/nimbuslab/gtools/internal/providers/serpapi"
	"github.com/nimbuslab/gtools/internal/schema"
)

// quoteClient is the provider surface the finance tool uses.
type quoteClient interface {
	QuoteSearch(ctx context.Context, p serpapi.QuoteParams) (*serpapi.Quote, error)
	NewsSearch(ctx context.Context, query string) ([]serpapi.NewsItem, error)
}

type financeTool struct {
	cfg       *config.Config
	newClient func(apiKey string) quoteClient
}

// NewFinanceTool returns the financial quote tool.
func NewFinanceTool(cfg *config.Config) Tool {
	return &financeTool{
		cfg: cfg,
		newClient: func(apiKey string) quoteClient {
			return serpapi.NewClient(apiKey)
		},
	}
}

var quoteWindows = []string{"1D", "5D", "1M", "6M", "YTD", "1Y", "5Y", "MAX"}

var financeParams = schema.Object{Fields: map[string]schema.Field{
	"query": {Type: schema.TypeString, Required: true,
		Description: "Ticker, company name, index, or currency pair, e.g. GOOG, NASDAQ:AAPL, EUR-USD"},
	"window": {Type: schema.TypeString, Enum: quoteWindows,
		Description: "Price history window for the analysis section"},
	"summary_only": {Type: schema.TypeBoolean, Default: true,
		Description: "Return only the headline quote plus a compact futures list"},
	"include_news": {Type: schema.TypeBoolean, Default: false,
		Description: "Include recent headlines (detailed mode only)"},
	"max_news": {Type: schema.TypeInteger, Default: 3,
		Description: "Maximum headlines to include; zero or less suppresses the section"},
	"include_markets": {Type: schema.TypeBoolean, Default: false,
		Description: "Include the market overview section (detailed mode only)"},
	"include_related": {Type: schema.TypeBoolean, Default: false,
		Description: "Include related instruments (detailed mode only)"},
	"max_related": {Type: schema.TypeInteger, Default: 3,
		Description: "Maximum related/futures entries; zero or less suppresses the section"},
	"include_price_insights": {Type: schema.TypeBoolean, Default: false,
		Description: "Include the price history analysis (detailed mode only, needs a window)"},
}}

func (t *financeTool) Definition() mcp.Tool {
	return definition("finance_quote",
		"Look up a stock, index, future, or currency quote with optional news and market context",
		financeParams)
}

func (t *financeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return dispatch(ctx, "finance_quote", financeParams, req, func(ctx context.Context, r *schema.Request) (string, error) {
		cred, err := credentials.Resolve(t.cfg, credentials.KindSerpAPI)
		if err != nil {
			return "", err
		}
		client := t.newClient(cred.APIKey)

		quote, err := client.QuoteSearch(ctx, serpapi.QuoteParams{
			Query:  r.String("query"),
			Window: r.String("window"),
		})
		if err != nil {
			return "", err
		}

		flags := serpapi.QuoteFlags{
			SummaryOnly:     r.Bool("summary_only"),
			IncludeNews:     r.Bool("include_news"),
			MaxNews:         r.Int("max_news"),
			IncludeMarkets:  r.Bool("include_markets"),
			IncludeRelated:  r.Bool("include_related"),
			MaxRelated:      r.Int("max_related"),
			IncludeInsights: r.Bool("include_price_insights"),
		}

		// Backfill headlines from the news engine when the quote payload
		// carried none. The news key is optional; a missing key or a failed
		// fetch degrades the section instead of failing the invocation.
		if !flags.SummaryOnly && flags.IncludeNews && len(quote.News) == 0 {
			if newsCred, _ := credentials.Resolve(t.cfg, credentials.KindNews); newsCred != nil && newsCred.APIKey != "" {
				items, err := t.newClient(newsCred.APIKey).NewsSearch(ctx, r.String("query"))
				if err != nil {
					log.Printf("[finance_quote] news backfill failed: %v", err)
				} else {
					quote.News = items
				}
			}
		}

		return serpapi.RenderQuote(serpapi.ProjectQuote(quote, flags)), nil
	})
}
