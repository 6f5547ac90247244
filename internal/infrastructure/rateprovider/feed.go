// Package rateprovider implements the exchange-rate provider port over an
// ECB-style XML feed. The feed quotes units of foreign currency per one base
// unit; rates are inverted here so the rest of the system only ever sees
// multiplicative to-base factors.
package rateprovider

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jrkphani/pipeline-pulse-sub004/internal/application/rates"
)

const feedDateLayout = "2006-01-02"

// Feed is one parsed rate publication.
type Feed struct {
	AsOf   time.Time
	Quotes []Quote
}

// Quote is one raw feed entry: PerBase units of Currency buy one base unit.
type Quote struct {
	Currency string
	PerBase  decimal.Decimal
}

// ParseFeed reads an ECB-style XML document: a dated Cube element wrapping
// one Cube per currency with currency and rate attributes. Documents
// declaring ISO-8859-1 are transcoded; anything else is read as-is.
func ParseFeed(data []byte) (*Feed, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		if strings.EqualFold(charset, "ISO-8859-1") || strings.EqualFold(charset, "ISO8859-1") {
			return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
		}
		return input, nil
	}
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("rate feed: parse XML: %w", err)
	}

	day := doc.FindElement("//Cube[@time]")
	if day == nil {
		return nil, fmt.Errorf("rate feed: no dated Cube element")
	}
	asOf, err := time.Parse(feedDateLayout, day.SelectAttrValue("time", ""))
	if err != nil {
		return nil, fmt.Errorf("rate feed: bad time attribute: %w", err)
	}

	var quotes []Quote
	for _, el := range day.FindElements("./Cube[@currency]") {
		code := el.SelectAttrValue("currency", "")
		rateAttr := el.SelectAttrValue("rate", "")
		rate, err := decimal.NewFromString(rateAttr)
		if err != nil {
			return nil, fmt.Errorf("rate feed: bad rate %q for %q: %w", rateAttr, code, err)
		}
		quotes = append(quotes, Quote{Currency: code, PerBase: rate})
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("rate feed: no currency quotes")
	}
	return &Feed{AsOf: asOf, Quotes: quotes}, nil
}

// ProviderRates inverts the feed quotes into to-base factors. Non-positive
// quotes have no reciprocal and are dropped.
func (f *Feed) ProviderRates() []rates.ProviderRate {
	one := decimal.NewFromInt(1)
	out := make([]rates.ProviderRate, 0, len(f.Quotes))
	for _, q := range f.Quotes {
		if !q.PerBase.IsPositive() {
			continue
		}
		out = append(out, rates.ProviderRate{
			Currency:   q.Currency,
			RateToBase: one.Div(q.PerBase),
			AsOf:       f.AsOf,
		})
	}
	return out
}
