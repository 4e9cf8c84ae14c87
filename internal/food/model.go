// Package food is the food delivery domain: restaurants, their menus,
// users, reviews and orders.
package food

import (
	"time"

	"fixture-graph/internal/store"
)

const (
	KindRestaurant store.Kind = "food.restaurant"
	KindMenuItem   store.Kind = "food.menu_item"
	KindUser       store.Kind = "food.user"
	KindReview     store.Kind = "food.review"
	KindOrder      store.Kind = "food.order"
)

type Restaurant struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (r Restaurant) EntityID() string { return r.ID }

type MenuItem struct {
	ID           string  `json:"id"`
	RestaurantID string  `json:"restaurantId"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
}

func (m MenuItem) EntityID() string { return m.ID }

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (u User) EntityID() string { return u.ID }

type Review struct {
	ID           string `json:"id"`
	UserID       string `json:"userId"`
	RestaurantID string `json:"restaurantId"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment"`
}

func (r Review) EntityID() string { return r.ID }

// OrderedItem is one line of an order. It lives inside the order and has no
// identity of its own.
type OrderedItem struct {
	MenuItemID string `json:"menuItemId"`
	Quantity   int    `json:"quantity"`
}

// Order keeps the total computed when it was placed; later price changes
// never touch it.
type Order struct {
	ID           string        `json:"id"`
	UserID       string        `json:"userId"`
	RestaurantID string        `json:"restaurantId"`
	Items        []OrderedItem `json:"items"`
	TotalAmount  float64       `json:"totalAmount"`
	Status       OrderStatus   `json:"status"`
	PlacedAt     time.Time     `json:"placedAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

func (o Order) EntityID() string { return o.ID }

func (o Order) menuItemIDs() []string {
	ids := make([]string, len(o.Items))
	for i, it := range o.Items {
		ids[i] = it.MenuItemID
	}
	return ids
}

// Register adds the decoders for every food kind to c.
func Register(c store.Codec) {
	store.Register[Restaurant](c, KindRestaurant)
	store.Register[MenuItem](c, KindMenuItem)
	store.Register[User](c, KindUser)
	store.Register[Review](c, KindReview)
	store.Register[Order](c, KindOrder)
}

// Input and patch types accepted by Service.

type UserInput struct {
	Username string
	Email    string
}

type RestaurantInput struct {
	Name        string
	Description string
}

type MenuItemInput struct {
	RestaurantID string
	Name         string
	Description  string
	Price        float64
}

type ReviewInput struct {
	UserID       string
	RestaurantID string
	Rating       int
	Comment      string
}

type OrderInput struct {
	UserID       string
	RestaurantID string
	Items        []OrderedItem
}
