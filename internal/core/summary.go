package core

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Bucket is the per-category sum and share of a transaction subset.
type Bucket struct {
	CategoryID string          `json:"id"`
	Name       string          `json:"name"`
	Color      string          `json:"color"`
	ColorName  string          `json:"color_name"`
	Total      decimal.Decimal `json:"total"`
	Percentage float64         `json:"percentage"`
	Count      int             `json:"count"`
}

// Slice is a pie chart segment expressed in percent of the full circle.
type Slice struct {
	Bucket
	Start float64
	End   float64
}

// Report is everything the report view renders for one filter.
type Report struct {
	Filter       Filter
	Total        decimal.Decimal
	Transactions []Transaction
	Buckets      []Bucket
	Slices       []Slice
}

// Sum returns the total amount of txs.
func Sum(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		total = total.Add(t.Amount)
	}
	return total
}

// Aggregate groups txs by category. Only categories with at least one
// transaction produce a bucket; buckets follow catalog order and the
// uncategorized bucket, if any, comes last. Transactions pointing at an
// id the catalog does not know are counted as uncategorized.
// Percentages are relative to the total of txs and are all zero when that
// total is zero.
func Aggregate(txs []Transaction, catalog Catalog) []Bucket {
	total := Sum(txs)

	sums := make(map[string]decimal.Decimal)
	counts := make(map[string]int)
	for _, t := range txs {
		id := t.CategoryID
		if id == "" || !catalog.Has(id) {
			id = UncategorizedID
		}
		sums[id] = sums[id].Add(t.Amount)
		counts[id]++
	}

	buckets := make([]Bucket, 0, len(counts))
	for _, c := range catalog.categories {
		if counts[c.ID] == 0 {
			continue
		}
		buckets = append(buckets, newBucket(c, sums[c.ID], counts[c.ID], total))
	}
	if n := counts[UncategorizedID]; n > 0 {
		unc := Category{ID: UncategorizedID, Name: UncategorizedName, Color: UncategorizedColor}
		buckets = append(buckets, newBucket(unc, sums[UncategorizedID], n, total))
	}
	return buckets
}

func newBucket(c Category, sum decimal.Decimal, count int, total decimal.Decimal) Bucket {
	b := Bucket{
		CategoryID: c.ID,
		Name:       c.Name,
		Color:      c.Color,
		ColorName:  ColorName(c.Color),
		Total:      sum,
		Count:      count,
	}
	if total.IsPositive() {
		b.Percentage = sum.Div(total).Mul(hundred).InexactFloat64()
	}
	return b
}

// Slices lays buckets out around a circle in order.
func Slices(buckets []Bucket) []Slice {
	slices := make([]Slice, 0, len(buckets))
	start := 0.0
	for _, b := range buckets {
		end := start + b.Percentage
		if end > 100 {
			end = 100
		}
		slices = append(slices, Slice{Bucket: b, Start: start, End: end})
		start = end
	}
	return slices
}

// BuildReport applies f to txs and aggregates the result.
func BuildReport(txs []Transaction, catalog Catalog, f Filter) Report {
	filtered := f.Apply(txs)
	buckets := Aggregate(filtered, catalog)
	return Report{
		Filter:       f,
		Total:        Sum(filtered),
		Transactions: filtered,
		Buckets:      buckets,
		Slices:       Slices(buckets),
	}
}
