package model

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is one material line on a supplier purchase order.
type OrderItem struct {
	Material          Material `json:"material"`
	SuggestedQuantity float64  `json:"suggestedQuantity"` // feet
	OrderQuantity     float64  `json:"orderQuantity"`     // feet, user adjustable
	TotalCost         float64  `json:"totalCost"`
}

// Critical reports whether the item's material is critically low.
func (it OrderItem) Critical() bool {
	return StockSeverity(it.Material) == SeverityCritical
}

// SupplierOrder is a purchase order draft for every material sourced
// from one supplier.
type SupplierOrder struct {
	Number    string      `json:"number,omitempty"`
	Supplier  string      `json:"supplier"`
	Items     []OrderItem `json:"items"`
	TotalCost float64     `json:"totalCost"`
}

// Urgent reports whether any item on the order is critically low.
func (o SupplierOrder) Urgent() bool {
	for _, it := range o.Items {
		if it.Critical() {
			return true
		}
	}
	return false
}

// SuggestedQuantity is the reorder quantity for a material: twice the
// threshold, or enough to cover the deficit plus one threshold of
// headroom, whichever is larger.
func SuggestedQuantity(m Material) float64 {
	deficit := m.ReorderThreshold - m.CurrentStock
	return math.Max(m.ReorderThreshold*2, deficit+m.ReorderThreshold)
}

// PlanPurchaseOrders groups materials by their exact supplier string, in
// first-seen order, and prices the suggested quantity of each.
func PlanPurchaseOrders(materials []Material) []SupplierOrder {
	index := make(map[string]int)
	orders := []SupplierOrder{}
	for _, m := range materials {
		i, ok := index[m.Supplier]
		if !ok {
			i = len(orders)
			index[m.Supplier] = i
			orders = append(orders, SupplierOrder{Supplier: m.Supplier, Items: []OrderItem{}})
		}
		qty := SuggestedQuantity(m)
		orders[i].Items = append(orders[i].Items, OrderItem{
			Material:          m,
			SuggestedQuantity: qty,
			OrderQuantity:     qty,
			TotalCost:         lineCost(qty, m.UnitCost),
		})
	}
	for i := range orders {
		orders[i].TotalCost = supplierTotal(orders[i].Items)
	}
	return orders
}

// SetOrderQuantity adjusts one item's order quantity, recomputing that
// item's cost and its supplier's total. No other totals change.
func SetOrderQuantity(orders []SupplierOrder, supplierIdx, itemIdx int, qty float64) error {
	if supplierIdx < 0 || supplierIdx >= len(orders) {
		return NewValidationError("supplier", "no supplier order at index %d", supplierIdx)
	}
	order := &orders[supplierIdx]
	if itemIdx < 0 || itemIdx >= len(order.Items) {
		return NewValidationError("item", "no item at index %d on order for %s", itemIdx, order.Supplier)
	}
	if qty < 0 || math.IsNaN(qty) || math.IsInf(qty, 0) {
		return NewValidationError("orderQuantity", "order quantity must be a non-negative number")
	}
	item := &order.Items[itemIdx]
	item.OrderQuantity = qty
	item.TotalCost = lineCost(qty, item.Material.UnitCost)
	order.TotalCost = supplierTotal(order.Items)
	return nil
}

// GrandTotal sums the supplier totals.
func GrandTotal(orders []SupplierOrder) float64 {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(decimal.NewFromFloat(o.TotalCost))
	}
	return total.InexactFloat64()
}

// NewPurchaseOrderNumber returns a PO number of the form
// PO-<last six digits of unix millis>-<three random characters>.
func NewPurchaseOrderNumber(now time.Time) string {
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}
	suffix := make([]byte, 3)
	for i := range suffix {
		suffix[i] = orderCodeAlphabet[rand.IntN(len(orderCodeAlphabet))]
	}
	return fmt.Sprintf("PO-%s-%s", ms, suffix)
}

func lineCost(qty, unitCost float64) float64 {
	return decimal.NewFromFloat(qty).Mul(decimal.NewFromFloat(unitCost)).InexactFloat64()
}

func supplierTotal(items []OrderItem) float64 {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(decimal.NewFromFloat(it.TotalCost))
	}
	return total.InexactFloat64()
}
