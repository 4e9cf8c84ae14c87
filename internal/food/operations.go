package food

import (
	"context"

	"fixture-graph/internal/facade"
	"fixture-graph/internal/relation"
	"fixture-graph/internal/store"
)

// Operations is the food schema's root field set.
func Operations(svc Service) []facade.Operation {
	return []facade.Operation{
		// Queries
		{Name: "restaurants", Kind: facade.Query, Entity: "Restaurant", Handler: func(ctx context.Context, sess *facade.Session, args facade.Args) (any, error) {
			return restaurantViews(sess, store.List[Restaurant](sess.Snapshot, KindRestaurant)), nil
		}},
		{Name: "restaurant", Kind: facade.Query, Entity: "Restaurant", Handler: byID(KindRestaurant, newRestaurantView)},
		{Name: "menuItems", Kind: facade.Query, Entity: "MenuItem", Handler: menuItems},
		{Name: "menuItem", Kind: facade.Query, Entity: "MenuItem", Handler: byID(KindMenuItem, newMenuItemView)},
		{Name: "users", Kind: facade.Query, Entity: "User", Handler: func(ctx context.Context, sess *facade.Session, args facade.Args) (any, error) {
			return userViews(sess, store.List[User](sess.Snapshot, KindUser)), nil
		}},
		{Name: "user", Kind: facade.Query, Entity: "User", Handler: byID(KindUser, newUserView)},
		{Name: "review", Kind: facade.Query, Entity: "Review", Handler: byID(KindReview, newReviewView)},
		{Name: "order", Kind: facade.Query, Entity: "Order", Handler: byID(KindOrder, newOrderView)},

		// Users
		{Name: "createUser", Kind: facade.Mutation, Entity: "User", Handler: func(ctx context.Context, sess *facade.Session, args facade.Args) (any, error) {
			in, err := args.Object("input")
			if err != nil {
				return nil, err
			}
			var u UserInput
			if u.Username, err = in.String("username"); err != nil {
				return nil, err
			}
			if u.Email, err = in.String("email"); err != nil {
				return nil, err
			}
			v, snap, err := svc.CreateUser(ctx, u)
			if err != nil {
				return nil, err
			}
			return newUserView(sess.At(snap), v), nil
		}},
		{Name: "updateUser", Kind: facade.Mutation, Entity: "User", Handler: func(ctx context.Context, sess *facade.Session, args facade.Args) (any, error) {
			id, err := args.ID("id")
			if err != nil {
				return nil, err
			}
			var p UserPatch
			if p.Username, err = args.OptString("username"); err != nil {
				return nil, err
			}
			if p.Email, err = args.OptString("email"); err != nil {
				return nil, err
			}
			v, snap, err := svc.UpdateUser(ctx, id, p)
			if err != nil {
				return nil, err
			}
			return newUserView(sess.At(snap), v), nil
		}},
		{Name: "deleteUser", Kind: facade.Mutation, Entity: "User", Handler: remove(svc.DeleteUser, newUserView)},

		// Restaurants
		{Name: "createRestaurant", Kind: facade.Mutation, Entity: "Restaurant", Handler: func(ctx context.Context, sess *facade.Session, args facade.Args) (any, error) {
			in, err := args.Object("input")
			if err != nil {
				return nil, err
			}
			var r RestaurantInput
			if r.Name, err = in.String("name"); err != nil {
				return nil, err
			}
			if r.Description, err = in.String("description"); err != nil {
				return nil, err
			}
			v, snap, err := svc.CreateRestaurant(ctx, r)
			if err != nil {
				return nil, err
			}
			return newRestaurantView(sess.At(snap), v), nil
		}},
		{Name: "updateRestaurant", Kind: facade.Mutation, Entity: "Restaurant", Handler: func(ctx context.Context, sess *facade.Session, args facade.Args) (any, error) {
			id, err := args.ID("id")
			if err != nil {
				return nil, err
			}
			var p RestaurantPatch
			if p.Name, err = args.OptString("name"); err != nil {
				return nil, err
			}
			if p.Description, err = args.OptString("description"); err != nil {
				return nil, err
			}
			v, snap, err := svc.UpdateRestaurant(ctx, id, p)
			if err != nil {
				return nil, err
			}
			return newRestaurantView(sess.At(snap), v), nil
		}},
		{Name: "deleteRestaurant", Kind: facade.Mutation, Entity: "Restaurant", Handler: remove(svc.DeleteRestaurant, newRestaurantView)},

		// Menu items
		{Name: "createMenuItem", Kind: facade.Mutation, Entity: "MenuItem", Handler: func(ctx context.Context, sess *facade.Session, args facade.Args) (any, error) {
			in, err := args.Object("input")
			if err != nil {
				return nil, err
			}
			var m MenuItemInput
			if m.RestaurantID, err = in.ID("restaurantId"); err != nil {
				return nil, err
			}
			if m.Name, err = in.String("name"); err != nil {
				return nil, err
			}
			if m.Description, err = in.String("description"); err != nil {
				return nil, err
			}
			if m.Price, err = in.Float("price"); err != nil {
				return nil, err
			}
			v, snap, err := svc.CreateMenuItem(ctx, m)
			if err != nil {
				return nil, err
			}
			return newMenuItemView(sess.At(snap), v), nil
		}},
		{Name: "updateMenuItem", Kind: facade.Mutation, Entity: "MenuItem", Handler: func(ctx context.Context, sess *facade.Session, args facade.Args) (any, error) {
			id, err := args.ID("id")
			if err != nil {
				return nil, err
			}
			var p MenuItemPatch
			if p.Name, err = args.OptString("name"); err != nil {
				return nil, err
			}
			if p.Description, err = args.OptString("description"); err != nil {
				return nil, err
			}
			if p.Price, err = args.OptFloat("price"); err != nil {
				return nil, err
			}
			v, snap, err := svc.UpdateMenuItem(ctx, id, p)
			if err != nil {
				return nil, err
			}
			return newMenuItemView(sess.At(snap), v), nil
		}},
		{Name: "deleteMenuItem", Kind: facade.Mutation, Entity: "MenuItem", Handler: remove(svc.DeleteMenuItem, newMenuItemView)},

		// Reviews
		{Name: "createReview", Kind: facade.Mutation, Entity: "Review", Handler: func(ctx context.Context, sess *facade.Session, args facade.Args) (any, error) {
			var r ReviewInput
			var err error
			if r.UserID, err = args.ID("userId"); err != nil {
				return nil, err
			}
			if r.RestaurantID, err = args.ID("restaurantId"); err != nil {
				return nil, err
			}
			if r.Rating, err = args.Int("rating"); err != nil {
				return nil, err
			}
			if r.Comment, err = args.String("comment"); err != nil {
				return nil, err
			}
			v, snap, err := svc.CreateReview(ctx, r)
			if err != nil {
				return nil, err
			}
			return newReviewView(sess.At(snap), v), nil
		}},
		{Name: "updateReview", Kind: facade.Mutation, Entity: "Review", Handler: func(ctx context.Context, sess *facade.Session, args facade.Args) (any, error) {
			id, err := args.ID("id")
			if err != nil {
				return nil, err
			}
			var p ReviewPatch
			if p.Rating, err = args.OptInt("rating"); err != nil {
				return nil, err
			}
			if p.Comment, err = args.OptString("comment"); err != nil {
				return nil, err
			}
			v, snap, err := svc.UpdateReview(ctx, id, p)
			if err != nil {
				return nil, err
			}
			return newReviewView(sess.At(snap), v), nil
		}},
		{Name: "deleteReview", Kind: facade.Mutation, Entity: "Review", Handler: remove(svc.DeleteReview, newReviewView)},

		// Orders
		{Name: "createOrder", Kind: facade.Mutation, Entity: "Order", Handler: func(ctx context.Context, sess *facade.Session, args facade.Args) (any, error) {
			var in OrderInput
			var err error
			if in.UserID, err = args.ID("userId"); err != nil {
				return nil, err
			}
			if in.RestaurantID, err = args.ID("restaurantId"); err != nil {
				return nil, err
			}
			lines, err := args.Objects("items")
			if err != nil {
				return nil, err
			}
			for _, l := range lines {
				var it OrderedItem
				if it.MenuItemID, err = l.ID("menuItemId"); err != nil {
					return nil, err
				}
				if it.Quantity, err = l.Int("quantity"); err != nil {
					return nil, err
				}
				in.Items = append(in.Items, it)
			}
			v, snap, err := svc.CreateOrder(ctx, in)
			if err != nil {
				return nil, err
			}
			return newOrderView(sess.At(snap), v), nil
		}},
		{Name: "cancelOrder", Kind: facade.Mutation, Entity: "Order", Handler: func(ctx context.Context, sess *facade.Session, args facade.Args) (any, error) {
			id, err := args.ID("id")
			if err != nil {
				return nil, err
			}
			v, snap, err := svc.CancelOrder(ctx, id)
			if err != nil {
				return nil, err
			}
			return newOrderView(sess.At(snap), v), nil
		}},
		{Name: "updateOrderStatus", Kind: facade.Mutation, Entity: "Order", Handler: func(ctx context.Context, sess *facade.Session, args facade.Args) (any, error) {
			id, err := args.ID("id")
			if err != nil {
				return nil, err
			}
			raw, err := args.String("status")
			if err != nil {
				return nil, err
			}
			status, err := ParseOrderStatus(raw)
			if err != nil {
				return nil, err
			}
			v, snap, err := svc.UpdateOrderStatus(ctx, id, status)
			if err != nil {
				return nil, err
			}
			return newOrderView(sess.At(snap), v), nil
		}},
		{Name: "deleteOrder", Kind: facade.Mutation, Entity: "Order", Handler: remove(svc.DeleteOrder, newOrderView)},
	}
}

func menuItems(ctx context.Context, sess *facade.Session, args facade.Args) (any, error) {
	id, err := args.ID("restaurantId")
	if err != nil {
		return nil, err
	}
	r, err := relation.Must[Restaurant](sess.Snapshot, KindRestaurant, "Restaurant", id)
	if err != nil {
		return nil, err
	}
	return newRestaurantView(sess, r).Menu(), nil
}

// byID answers a lookup query. A miss is null, not an error.
func byID[T store.Entity, V any](kind store.Kind, newView func(*facade.Session, T) *V) facade.Handler {
	return func(ctx context.Context, sess *facade.Session, args facade.Args) (any, error) {
		id, err := args.ID("id")
		if err != nil {
			return nil, err
		}
		return lookup(sess, kind, id, newView), nil
	}
}

func remove[T any, V any](del func(context.Context, string) (T, *store.Snapshot, error), newView func(*facade.Session, T) *V) facade.Handler {
	return func(ctx context.Context, sess *facade.Session, args facade.Args) (any, error) {
		id, err := args.ID("id")
		if err != nil {
			return nil, err
		}
		v, snap, err := del(ctx, id)
		if err != nil {
			return nil, err
		}
		return newView(sess.At(snap), v), nil
	}
}
