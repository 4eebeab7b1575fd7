package service

import (
	"math"

	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/models"
)

// ComputeTotals returns the order's total amount and total item count.
// The two are independent sums: amount is unit price times quantity summed
// per line, count is the plain sum of quantities.
func ComputeTotals(items []models.OrderItem) (float64, int) {
	var amount float64
	var count int
	for _, item := range items {
		amount += item.UnitPrice * float64(item.Quantity)
		count += item.Quantity
	}
	return roundCents(amount), count
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
