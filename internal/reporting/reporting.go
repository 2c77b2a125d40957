// Package reporting computes the admin dashboard figures. Everything here is
// a pure function over order data already loaded from the store, so the
// numbers a handler serves are exactly the numbers a test can pin down.
package reporting

import (
	"sort"
	"time"

	"github.com/eatsmart-resto/api/internal/database"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// DefaultPopularItems is how many top sellers the dashboard shows.
const DefaultPopularItems = 5

// frenchDays is the dashboard's week, Monday first.
var frenchDays = [7]string{
	"Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi", "Samedi", "Dimanche",
}

// ItemCount is one entry of the popular-items ranking.
type ItemCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// DayCount is the order tally for one weekday.
type DayCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// TotalOrders returns the number of orders.
func TotalOrders(orders []database.Order) int64 {
	return int64(len(orders))
}

// TotalRevenue sums order totals. An order with an unreadable total counts
// as zero rather than poisoning the whole figure.
func TotalRevenue(orders []database.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(numericToDecimal(o.Total))
	}
	return total
}

// PopularItems ranks line items by total quantity sold, descending, and
// returns at most n entries. Ties keep the order in which the names first
// appear in items, so repeated calls over the same data rank identically.
func PopularItems(items []database.OrderItem, n int) []ItemCount {
	if n <= 0 {
		n = DefaultPopularItems
	}

	counts := make(map[string]int64)
	var names []string
	for _, it := range items {
		if _, seen := counts[it.Name]; !seen {
			names = append(names, it.Name)
		}
		counts[it.Name] += int64(it.Quantity)
	}

	ranked := make([]ItemCount, 0, len(names))
	for _, name := range names {
		ranked = append(ranked, ItemCount{Name: name, Count: counts[name]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// OrdersByDayOfWeek buckets orders by the weekday of their creation time.
// All seven days are always present, Monday first, zero-filled, so the
// dashboard chart never has holes.
func OrdersByDayOfWeek(orders []database.Order) []DayCount {
	var counts [7]int64
	for _, o := range orders {
		counts[mondayIndex(o.CreatedAt)]++
	}

	out := make([]DayCount, 7)
	for i, day := range frenchDays {
		out[i] = DayCount{Day: day, Count: counts[i]}
	}
	return out
}

// mondayIndex maps time.Weekday (Sunday = 0) onto a Monday-first week.
func mondayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}
