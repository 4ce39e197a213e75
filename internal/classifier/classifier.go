// Package classifier decides which corpus a question is about.
package classifier

import (
	"context"
	"strings"
)

// Label is the routing decision for a query.
type Label string

const (
	Product   Label = "product"
	Marketing Label = "marketing"
	Both      Label = "both"
)

// ParseLabel accepts exactly one of the three labels, ignoring surrounding
// whitespace and case.
func ParseLabel(s string) (Label, bool) {
	switch l := Label(strings.ToLower(strings.TrimSpace(s))); l {
	case Product, Marketing, Both:
		return l, true
	}
	return "", false
}

// Delegate is an external routing service. Any answer other than a valid
// label, and any error, counts as "no opinion".
type Delegate interface {
	Route(ctx context.Context, query string) (string, error)
}

// Classifier asks its delegate first and falls back to keyword scoring.
type Classifier struct {
	delegate Delegate
}

// New creates a Classifier. A nil delegate means keyword scoring only.
func New(delegate Delegate) *Classifier {
	return &Classifier{delegate: delegate}
}

// Classify always returns a valid label.
func (c *Classifier) Classify(ctx context.Context, query string) Label {
	if c.delegate != nil {
		if answer, err := c.delegate.Route(ctx, query); err == nil {
			if label, ok := ParseLabel(answer); ok {
				return label
			}
		}
	}
	return KeywordClassify(query)
}

var productKeywords = []string{
	"product", "price", "buy", "available", "specifications", "feature", "features",
	"compare", "comparison", "lowest", "highest", "cheapest", "cost", "order",
	"stock", "quantity", "category", "categories", "type", "types",
	"fish", "fruits", "gold", "meat", "sweets", "wine",
}

var marketingKeywords = []string{
	"customer", "segment", "promotion", "campaign", "marketing", "loyalty",
	"offer", "discount", "bundle", "bundles", "subscription", "subscriptions",
	"online", "web", "first-purchase", "free delivery", "entry-price", "targeted",
	"time-limited", "activation", "digital", "engagement", "value shopper",
	"wine enthusiast", "price-conscious",
}

// KeywordClassify counts which keywords of each set occur as substrings of
// the lower-cased query. Only product hits, or none at all, yield Product.
func KeywordClassify(query string) Label {
	q := strings.ToLower(query)
	productHits := hits(q, productKeywords)
	marketingHits := hits(q, marketingKeywords)

	switch {
	case productHits > 0 && marketingHits > 0:
		return Both
	case marketingHits > 0:
		return Marketing
	default:
		return Product
	}
}

func hits(q string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(q, kw) {
			n++
		}
	}
	return n
}
