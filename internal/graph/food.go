package graph

import (
	"context"

	"fixture-graph/internal/food"

	"zombiezen.com/go/graphql-server/graphql"
)

// foodRoot is both the Query and the Mutation object of the food schema.
type foodRoot struct {
	root
}

func (r *foodRoot) Restaurants(ctx context.Context, args map[string]graphql.Value) ([]*food.RestaurantView, error) {
	return call[[]*food.RestaurantView](ctx, r.root, "restaurants", args)
}

func (r *foodRoot) Restaurant(ctx context.Context, args map[string]graphql.Value) (*food.RestaurantView, error) {
	return call[*food.RestaurantView](ctx, r.root, "restaurant", args)
}

func (r *foodRoot) MenuItems(ctx context.Context, args map[string]graphql.Value) ([]*food.MenuItemView, error) {
	return call[[]*food.MenuItemView](ctx, r.root, "menuItems", args)
}

func (r *foodRoot) MenuItem(ctx context.Context, args map[string]graphql.Value) (*food.MenuItemView, error) {
	return call[*food.MenuItemView](ctx, r.root, "menuItem", args)
}

func (r *foodRoot) Users(ctx context.Context, args map[string]graphql.Value) ([]*food.UserView, error) {
	return call[[]*food.UserView](ctx, r.root, "users", args)
}

func (r *foodRoot) User(ctx context.Context, args map[string]graphql.Value) (*food.UserView, error) {
	return call[*food.UserView](ctx, r.root, "user", args)
}

func (r *foodRoot) Order(ctx context.Context, args map[string]graphql.Value) (*food.OrderView, error) {
	return call[*food.OrderView](ctx, r.root, "order", args)
}

func (r *foodRoot) Review(ctx context.Context, args map[string]graphql.Value) (*food.ReviewView, error) {
	return call[*food.ReviewView](ctx, r.root, "review", args)
}

// Mutations run in document order, each against the state the previous one left.

func (r *foodRoot) CreateOrder(ctx context.Context, args map[string]graphql.Value) (*food.OrderView, error) {
	return call[*food.OrderView](ctx, r.root, "createOrder", args)
}

func (r *foodRoot) CancelOrder(ctx context.Context, args map[string]graphql.Value) (*food.OrderView, error) {
	return call[*food.OrderView](ctx, r.root, "cancelOrder", args)
}

func (r *foodRoot) UpdateOrderStatus(ctx context.Context, args map[string]graphql.Value) (*food.OrderView, error) {
	return call[*food.OrderView](ctx, r.root, "updateOrderStatus", args)
}

func (r *foodRoot) DeleteOrder(ctx context.Context, args map[string]graphql.Value) (*food.OrderView, error) {
	return call[*food.OrderView](ctx, r.root, "deleteOrder", args)
}

func (r *foodRoot) CreateReview(ctx context.Context, args map[string]graphql.Value) (*food.ReviewView, error) {
	return call[*food.ReviewView](ctx, r.root, "createReview", args)
}

func (r *foodRoot) UpdateReview(ctx context.Context, args map[string]graphql.Value) (*food.ReviewView, error) {
	return call[*food.ReviewView](ctx, r.root, "updateReview", args)
}

func (r *foodRoot) DeleteReview(ctx context.Context, args map[string]graphql.Value) (*food.ReviewView, error) {
	return call[*food.ReviewView](ctx, r.root, "deleteReview", args)
}

func (r *foodRoot) CreateUser(ctx context.Context, args map[string]graphql.Value) (*food.UserView, error) {
	return call[*food.UserView](ctx, r.root, "createUser", args)
}

func (r *foodRoot) UpdateUser(ctx context.Context, args map[string]graphql.Value) (*food.UserView, error) {
	return call[*food.UserView](ctx, r.root, "updateUser", args)
}

func (r *foodRoot) DeleteUser(ctx context.Context, args map[string]graphql.Value) (*food.UserView, error) {
	return call[*food.UserView](ctx, r.root, "deleteUser", args)
}

func (r *foodRoot) CreateRestaurant(ctx context.Context, args map[string]graphql.Value) (*food.RestaurantView, error) {
	return call[*food.RestaurantView](ctx, r.root, "createRestaurant", args)
}

func (r *foodRoot) UpdateRestaurant(ctx context.Context, args map[string]graphql.Value) (*food.RestaurantView, error) {
	return call[*food.RestaurantView](ctx, r.root, "updateRestaurant", args)
}

func (r *foodRoot) DeleteRestaurant(ctx context.Context, args map[string]graphql.Value) (*food.RestaurantView, error) {
	return call[*food.RestaurantView](ctx, r.root, "deleteRestaurant", args)
}

func (r *foodRoot) CreateMenuItem(ctx context.Context, args map[string]graphql.Value) (*food.MenuItemView, error) {
	return call[*food.MenuItemView](ctx, r.root, "createMenuItem", args)
}

func (r *foodRoot) UpdateMenuItem(ctx context.Context, args map[string]graphql.Value) (*food.MenuItemView, error) {
	return call[*food.MenuItemView](ctx, r.root, "updateMenuItem", args)
}

func (r *foodRoot) DeleteMenuItem(ctx context.Context, args map[string]graphql.Value) (*food.MenuItemView, error) {
	return call[*food.MenuItemView](ctx, r.root, "deleteMenuItem", args)
}
