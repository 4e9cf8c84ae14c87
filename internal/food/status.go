package food

import (
	"strings"

	"fixture-graph/internal/apperr"
)

type OrderStatus string

const (
	StatusPlaced         OrderStatus = "PLACED"
	StatusPreparing      OrderStatus = "PREPARING"
	StatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	StatusDelivered      OrderStatus = "DELIVERED"
	StatusCancelled      OrderStatus = "CANCELLED"
)

// next lists every status an order may move to directly.
var next = map[OrderStatus][]OrderStatus{
	StatusPlaced:         {StatusPreparing, StatusCancelled},
	StatusPreparing:      {StatusOutForDelivery, StatusCancelled},
	StatusOutForDelivery: {StatusDelivered},
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusPlaced, StatusPreparing, StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return st, nil
	}
	return "", apperr.Validation("Order", "", "unknown status "+s)
}

func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanMoveTo checks a single step of the order lifecycle for order id.
func (s OrderStatus) CanMoveTo(id string, to OrderStatus) error {
	if s.Terminal() {
		return apperr.TerminalState("Order", id, string(s))
	}
	for _, allowed := range next[s] {
		if allowed == to {
			return nil
		}
	}
	return apperr.InvalidTransition("Order", id, string(s), string(to))
}
