package woocommerce

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Product is the subset of a /wc/v3/products entry the reconciler reads.
type Product struct {
	ID            int64       `json:"id"`
	Name          string      `json:"name"`
	Type          string      `json:"type"`
	Status        string      `json:"status"`
	SKU           string      `json:"sku"`
	Price         Price       `json:"price"`
	StockQuantity *int        `json:"stock_quantity"`
	Images        []Image     `json:"images"`
	VariationIDs  []int64     `json:"variations"`
	Variations    []Variation `json:"-"`
}

type Image struct {
	ID   int64  `json:"id"`
	Src  string `json:"src"`
	Name string `json:"name"`
	Alt  string `json:"alt"`
}

type Variation struct {
	ID            int64       `json:"id"`
	SKU           string      `json:"sku"`
	Price         Price       `json:"price"`
	StockQuantity *int        `json:"stock_quantity"`
	Status        string      `json:"status"`
	Attributes    []Attribute `json:"attributes"`
}

type Attribute struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Option string `json:"option"`
}

type setting struct {
	ID    string          `json:"id"`
	Value json.RawMessage `json:"value"`
}

// Price decodes a WooCommerce price served as a string, a number or null.
// Anything that does not parse to a finite number becomes 0.
type Price float64

func (p *Price) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*p = 0
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}
	*p = Price(ParsePrice(raw))
	return nil
}

// ParsePrice returns 0 for empty, malformed, NaN or infinite input.
func ParsePrice(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
