package serpapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/nimbuslab/gtools/internal/providers/fieldres"
	"github.com/nimbuslab/gtools/internal/render"
	"github.com/nimbuslab/gtools/internal/toolerr"
)

const quoteEmptyMessage = "No financial data found for the given query."

// QuoteParams is the provider call shape for a google_finance query.
type QuoteParams struct {
	Query  string
	Window string // e.g. 1D, 5D, 1M, 6M, YTD, 1Y, 5Y, MAX; omitted when empty
}

// Instrument is one compact entry of a futures chain or related listing.
type Instrument struct {
	Name      string
	PriceText string
	Movement  string
	Percent   float64
}

// MarketEntry is one index/currency row of the markets overview.
type MarketEntry struct {
	Region    string
	Name      string
	PriceText string
	Movement  string
	Percent   float64
}

// NewsItem is one headline attached to the quote.
type NewsItem struct {
	Title   string
	Source  string
	Date    string
	Link    string
	Snippet string
}

// PriceInsights summarizes the requested window's price history.
type PriceInsights struct {
	Low   float64
	High  float64
	First float64
	Last  float64
}

// Quote is the normalized result of a finance search. Every field has been
// resolved through the provider's known alternate shapes; raw provider field
// names do not leak past this struct.
type Quote struct {
	Symbol   string
	Name     string
	Exchange string

	Price     float64
	PriceText string
	Currency  string

	Movement    string // "Up" or "Down"
	MovementPct float64
	MovementVal float64
	HasMovement bool

	Window string

	Futures  []Instrument
	Related  []Instrument
	Markets  []MarketEntry
	News     []NewsItem
	Insights *PriceInsights
}

// QuoteFlags are the caller's verbosity switches for a quote.
type QuoteFlags struct {
	SummaryOnly     bool
	IncludeNews     bool
	MaxNews         int
	IncludeMarkets  bool
	IncludeRelated  bool
	MaxRelated      int
	IncludeInsights bool
}

// ProjectedQuote is the flag-trimmed view handed to the renderer. Headline
// fields are always present; list sections are nil when excluded.
type ProjectedQuote struct {
	Quote *Quote

	Futures  []Instrument
	Related  []Instrument
	Markets  []MarketEntry
	News     []NewsItem
	Insights *PriceInsights
}

func buildQuoteQuery(p QuoteParams) url.Values {
	params := url.Values{}
	params.Set("q", p.Query)
	if p.Window != "" {
		params.Set("window", p.Window)
	}
	return params
}

// QuoteSearch runs the finance query and returns the normalized quote.
func (c *Client) QuoteSearch(ctx context.Context, p QuoteParams) (*Quote, error) {
	body, err := c.search(ctx, "google_finance", buildQuoteQuery(p))
	if err != nil {
		return nil, err
	}
	q, err := NormalizeQuote(body)
	if err != nil {
		return nil, err
	}
	q.Window = p.Window
	return q, nil
}

// NormalizeQuote locates the primary quote record and resolves its fields.
//
// Resolution order is significant: the top-level summary record is preferred
// over the first entry of the futures chain even when both are present; the
// futures entry is only promoted to primary when no summary exists.
func NormalizeQuote(body []byte) (*Quote, error) {
	doc := gjson.ParseBytes(body)

	primary := doc.Get("summary")
	promoted := false
	if !primary.Exists() {
		if chain := doc.Get("futures_chain").Array(); len(chain) > 0 {
			primary = chain[0]
			promoted = true
		}
	}
	if !primary.Exists() {
		return nil, toolerr.EmptyResult(quoteEmptyMessage)
	}

	q := &Quote{
		Symbol:   fieldres.FirstString(primary, "stock", "symbol", "ticker"),
		Name:     fieldres.FirstString(primary, "title", "name", "stock"),
		Exchange: fieldres.FirstString(primary, "exchange", "market.exchange"),
		Currency: fieldres.FirstString(primary, "currency", "market.currency"),
	}

	q.PriceText = fieldres.FirstString(primary, "price", "market.price")
	if v, ok := fieldres.FirstFloat(primary, "extracted_price", "market.extracted_price"); ok {
		q.Price = v
	} else if q.PriceText != "" {
		currency, amount := fieldres.SplitPrice(q.PriceText)
		if q.Currency == "" {
			q.Currency = currency
		}
		q.Price, _ = strconv.ParseFloat(strings.ReplaceAll(amount, ",", ""), 64)
	}
	if q.Currency == "" && q.PriceText != "" {
		q.Currency, _ = fieldres.SplitPrice(q.PriceText)
	}

	movement := fieldres.First(primary, "price_movement", "market.price_movement")
	if movement.Exists() {
		q.HasMovement = true
		q.Movement = movement.Get("movement").String()
		q.MovementPct = movement.Get("percentage").Float()
		q.MovementVal = movement.Get("value").Float()
	}

	if q.Symbol == "" && q.Name == "" && q.PriceText == "" && q.Price == 0 {
		return nil, toolerr.EmptyResult(quoteEmptyMessage)
	}

	// Ancillary sections. When the futures entry was promoted to primary it
	// is not repeated in the futures list.
	chain := doc.Get("futures_chain").Array()
	for i, f := range chain {
		if promoted && i == 0 {
			continue
		}
		q.Futures = append(q.Futures, normalizeInstrument(f))
	}
	for _, group := range doc.Get("discover_more").Array() {
		for _, item := range group.Get("items").Array() {
			q.Related = append(q.Related, normalizeInstrument(item))
		}
	}
	q.Markets = normalizeMarkets(doc.Get("markets"))
	for _, n := range doc.Get("news_results").Array() {
		q.News = append(q.News, NewsItem{
			Title:   fieldres.FirstString(n, "title", "snippet"),
			Source:  n.Get("source").String(),
			Date:    n.Get("date").String(),
			Link:    n.Get("link").String(),
			Snippet: n.Get("snippet").String(),
		})
	}
	q.Insights = normalizeGraph(doc.Get("graph").Array())

	return q, nil
}

func normalizeInstrument(r gjson.Result) Instrument {
	inst := Instrument{
		Name:      fieldres.FirstString(r, "stock", "name", "title"),
		PriceText: fieldres.FirstString(r, "price", "extracted_price"),
	}
	if pm := r.Get("price_movement"); pm.Exists() {
		inst.Movement = pm.Get("movement").String()
		inst.Percent = pm.Get("percentage").Float()
	}
	return inst
}

// normalizeMarkets flattens the region-keyed markets overview into ordered
// rows. Region order is fixed so rendering is deterministic.
var marketRegions = []string{"us", "europe", "asia", "currencies", "crypto", "futures"}

func normalizeMarkets(markets gjson.Result) []MarketEntry {
	if !markets.Exists() {
		return nil
	}
	var out []MarketEntry
	for _, region := range marketRegions {
		for _, row := range markets.Get(region).Array() {
			entry := MarketEntry{
				Region:    region,
				Name:      fieldres.FirstString(row, "name", "stock"),
				PriceText: fieldres.FirstString(row, "price", "extracted_price"),
			}
			if pm := row.Get("price_movement"); pm.Exists() {
				entry.Movement = pm.Get("movement").String()
				entry.Percent = pm.Get("percentage").Float()
			}
			out = append(out, entry)
		}
	}
	return out
}

func normalizeGraph(points []gjson.Result) *PriceInsights {
	if len(points) == 0 {
		return nil
	}
	ins := &PriceInsights{}
	for i, p := range points {
		price := p.Get("price").Float()
		if i == 0 {
			ins.Low, ins.High, ins.First = price, price, price
		}
		if price < ins.Low {
			ins.Low = price
		}
		if price > ins.High {
			ins.High = price
		}
		ins.Last = price
	}
	return ins
}

// ProjectQuote trims the normalized quote per the caller's flags.
//
// Summary mode keeps the headline fields plus a compact futures list that
// detailed mode deliberately omits; detailed mode keeps the headline fields
// and adds the flag-gated markets, news, related, and insights sections.
// List truncation is always a prefix of the provider order; a max of zero or
// less suppresses the section entirely.
func ProjectQuote(q *Quote, flags QuoteFlags) *ProjectedQuote {
	p := &ProjectedQuote{Quote: q}

	if flags.SummaryOnly {
		p.Futures = prefix(q.Futures, flags.MaxRelated)
		return p
	}

	if flags.IncludeMarkets {
		p.Markets = q.Markets
	}
	if flags.IncludeNews {
		p.News = prefix(q.News, flags.MaxNews)
	}
	if flags.IncludeRelated {
		p.Related = prefix(q.Related, flags.MaxRelated)
	}
	if flags.IncludeInsights {
		p.Insights = q.Insights
	}
	return p
}

func prefix[T any](items []T, max int) []T {
	if max <= 0 || len(items) == 0 {
		return nil
	}
	if len(items) > max {
		return items[:max]
	}
	return items
}

// RenderQuote renders the projected quote. Section order is fixed: headline
// numbers, then markets, price analysis, news, related, futures.
func RenderQuote(p *ProjectedQuote) string {
	q := p.Quote

	title := q.Name
	if q.Symbol != "" && q.Symbol != q.Name {
		title = fmt.Sprintf("%s (%s)", q.Name, q.Symbol)
	}
	doc := render.New("Quote: " + title)

	if q.Exchange != "" {
		doc.Fieldf("Exchange", "%s", q.Exchange)
	}
	doc.Fieldf("Price", "%s", formatQuotePrice(q))
	if q.HasMovement {
		doc.Fieldf("Movement", "%s %s (%s)", q.Movement,
			formatPercent(q.MovementPct), formatNumber(q.MovementVal))
	}
	if q.Window != "" {
		doc.Fieldf("Window", "%s", q.Window)
	}

	if len(p.Markets) > 0 {
		doc.Section("Market Overview")
		for _, m := range p.Markets {
			doc.Bulletf("%s", instrumentLine(m.Name, m.PriceText, m.Movement, m.Percent))
		}
	}

	if p.Insights != nil {
		doc.Section("Price Analysis")
		doc.Bulletf("Range: %s – %s", formatNumber(p.Insights.Low), formatNumber(p.Insights.High))
		doc.Bulletf("Opened at %s, last at %s", formatNumber(p.Insights.First), formatNumber(p.Insights.Last))
	}

	if len(p.News) > 0 {
		doc.Section("News")
		for _, n := range p.News {
			doc.Bulletf("%s — %s%s", n.Title, n.Source, dateSuffix(n.Date))
		}
	}

	if len(p.Related) > 0 {
		doc.Section("Related Instruments")
		for _, r := range p.Related {
			doc.Bulletf("%s", instrumentLine(r.Name, r.PriceText, r.Movement, r.Percent))
		}
	}

	if len(p.Futures) > 0 {
		doc.Section("Futures")
		for _, f := range p.Futures {
			doc.Bulletf("%s", instrumentLine(f.Name, f.PriceText, f.Movement, f.Percent))
		}
	}

	return doc.String()
}

func formatQuotePrice(q *Quote) string {
	if q.PriceText != "" {
		return q.PriceText
	}
	if q.Currency != "" {
		return q.Currency + formatNumber(q.Price)
	}
	return formatNumber(q.Price)
}

func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatPercent(v float64) string {
	return formatNumber(v) + "%"
}

func instrumentLine(name, priceText, movement string, percent float64) string {
	line := fmt.Sprintf("%s: %s", name, priceText)
	switch movement {
	case "Up":
		line += fmt.Sprintf(" (+%s)", formatPercent(percent))
	case "Down":
		line += fmt.Sprintf(" (-%s)", formatPercent(percent))
	}
	return line
}

func dateSuffix(date string) string {
	if date == "" {
		return ""
	}
	return ", " + date
}
