package food

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fixture-graph/internal/aggregate"
	"fixture-graph/internal/apperr"
	"fixture-graph/internal/logger"
	"fixture-graph/internal/patch"
	"fixture-graph/internal/relation"
	"fixture-graph/internal/store"

	"go.uber.org/zap"
)

type UserPatch struct {
	Username patch.Field[string]
	Email    patch.Field[string]
}

type RestaurantPatch struct {
	Name        patch.Field[string]
	Description patch.Field[string]
}

type MenuItemPatch struct {
	Name        patch.Field[string]
	Description patch.Field[string]
	Price       patch.Field[float64]
}

type ReviewPatch struct {
	Rating  patch.Field[int]
	Comment patch.Field[string]
}

// Service is the food mutation engine. Every method runs inside one
// store.Update and returns the snapshot its change was published in.
type Service interface {
	CreateUser(ctx context.Context, in UserInput) (User, *store.Snapshot, error)
	UpdateUser(ctx context.Context, id string, p UserPatch) (User, *store.Snapshot, error)
	DeleteUser(ctx context.Context, id string) (User, *store.Snapshot, error)

	CreateRestaurant(ctx context.Context, in RestaurantInput) (Restaurant, *store.Snapshot, error)
	UpdateRestaurant(ctx context.Context, id string, p RestaurantPatch) (Restaurant, *store.Snapshot, error)
	DeleteRestaurant(ctx context.Context, id string) (Restaurant, *store.Snapshot, error)

	CreateMenuItem(ctx context.Context, in MenuItemInput) (MenuItem, *store.Snapshot, error)
	UpdateMenuItem(ctx context.Context, id string, p MenuItemPatch) (MenuItem, *store.Snapshot, error)
	DeleteMenuItem(ctx context.Context, id string) (MenuItem, *store.Snapshot, error)

	CreateReview(ctx context.Context, in ReviewInput) (Review, *store.Snapshot, error)
	UpdateReview(ctx context.Context, id string, p ReviewPatch) (Review, *store.Snapshot, error)
	DeleteReview(ctx context.Context, id string) (Review, *store.Snapshot, error)

	CreateOrder(ctx context.Context, in OrderInput) (Order, *store.Snapshot, error)
	CancelOrder(ctx context.Context, id string) (Order, *store.Snapshot, error)
	UpdateOrderStatus(ctx context.Context, id string, status OrderStatus) (Order, *store.Snapshot, error)
	DeleteOrder(ctx context.Context, id string) (Order, *store.Snapshot, error)
}

type service struct {
	store *store.Store
	now   func() time.Time
	newID func() string
}

type Option func(*service)

// WithClock replaces time.Now for order timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// WithIDs replaces store.NewID.
func WithIDs(newID func() string) Option {
	return func(s *service) { s.newID = newID }
}

func NewService(st *store.Store, opts ...Option) Service {
	s := &service{
		store: st,
		now:   time.Now,
		newID: store.NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) log(ctx context.Context, method string) *zap.Logger {
	return logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", method),
	)
}

// ------------------------
// Users
// ------------------------

func validateUser(id string, u User) error {
	if strings.TrimSpace(u.Username) == "" {
		return apperr.Validation("User", id, "username is required")
	}
	if !strings.Contains(u.Email, "@") {
		return apperr.Validation("User", id, "email must contain @")
	}
	return nil
}

func (s *service) CreateUser(ctx context.Context, in UserInput) (User, *store.Snapshot, error) {
	log := s.log(ctx, "CreateUser")

	u := User{ID: s.newID(), Username: strings.TrimSpace(in.Username), Email: strings.TrimSpace(in.Email)}
	if err := validateUser("", u); err != nil {
		return User{}, nil, err
	}

	snap, err := s.store.Update(ctx, func(tx *store.Tx) error {
		return tx.Insert(KindUser, u)
	})
	if err != nil {
		return User{}, nil, err
	}

	log.Info("user created", zap.String("user_id", u.ID))
	return u, snap, nil
}

func (s *service) UpdateUser(ctx context.Context, id string, p UserPatch) (User, *store.Snapshot, error) {
	var u User
	snap, err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		if u, err = relation.Must[User](tx, KindUser, "User", id); err != nil {
			return err
		}
		p.Username.Apply(&u.Username)
		p.Email.Apply(&u.Email)
		if err := validateUser(id, u); err != nil {
			return err
		}
		return tx.Replace(KindUser, u)
	})
	if err != nil {
		return User{}, nil, err
	}

	s.log(ctx, "UpdateUser").Info("user updated", zap.String("user_id", id))
	return u, snap, nil
}

func (s *service) DeleteUser(ctx context.Context, id string) (User, *store.Snapshot, error) {
	var u User
	snap, err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		if u, err = relation.Must[User](tx, KindUser, "User", id); err != nil {
			return err
		}
		if err := relation.Restrict("User", id,
			relation.Dependents{Name: "orders", N: relation.Count(tx, KindOrder, id, func(o Order) string { return o.UserID })},
			relation.Dependents{Name: "reviews", N: relation.Count(tx, KindReview, id, func(r Review) string { return r.UserID })},
		); err != nil {
			return err
		}
		tx.Remove(KindUser, id)
		return nil
	})
	if err != nil {
		return User{}, nil, err
	}

	s.log(ctx, "DeleteUser").Info("user deleted", zap.String("user_id", id))
	return u, snap, nil
}

// ------------------------
// Restaurants
// ------------------------

func validateRestaurant(id string, r Restaurant) error {
	if strings.TrimSpace(r.Name) == "" {
		return apperr.Validation("Restaurant", id, "name is required")
	}
	return nil
}

func (s *service) CreateRestaurant(ctx context.Context, in RestaurantInput) (Restaurant, *store.Snapshot, error) {
	r := Restaurant{ID: s.newID(), Name: strings.TrimSpace(in.Name), Description: in.Description}
	if err := validateRestaurant("", r); err != nil {
		return Restaurant{}, nil, err
	}

	snap, err := s.store.Update(ctx, func(tx *store.Tx) error {
		return tx.Insert(KindRestaurant, r)
	})
	if err != nil {
		return Restaurant{}, nil, err
	}

	s.log(ctx, "CreateRestaurant").Info("restaurant created", zap.String("restaurant_id", r.ID))
	return r, snap, nil
}

func (s *service) UpdateRestaurant(ctx context.Context, id string, p RestaurantPatch) (Restaurant, *store.Snapshot, error) {
	var r Restaurant
	snap, err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		if r, err = relation.Must[Restaurant](tx, KindRestaurant, "Restaurant", id); err != nil {
			return err
		}
		p.Name.Apply(&r.Name)
		p.Description.Apply(&r.Description)
		if err := validateRestaurant(id, r); err != nil {
			return err
		}
		return tx.Replace(KindRestaurant, r)
	})
	if err != nil {
		return Restaurant{}, nil, err
	}
	return r, snap, nil
}

func (s *service) DeleteRestaurant(ctx context.Context, id string) (Restaurant, *store.Snapshot, error) {
	var r Restaurant
	snap, err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		if r, err = relation.Must[Restaurant](tx, KindRestaurant, "Restaurant", id); err != nil {
			return err
		}
		if err := relation.Restrict("Restaurant", id,
			relation.Dependents{Name: "menu items", N: relation.Count(tx, KindMenuItem, id, func(m MenuItem) string { return m.RestaurantID })},
			relation.Dependents{Name: "reviews", N: relation.Count(tx, KindReview, id, func(rv Review) string { return rv.RestaurantID })},
			relation.Dependents{Name: "orders", N: relation.Count(tx, KindOrder, id, func(o Order) string { return o.RestaurantID })},
		); err != nil {
			return err
		}
		tx.Remove(KindRestaurant, id)
		return nil
	})
	if err != nil {
		return Restaurant{}, nil, err
	}

	s.log(ctx, "DeleteRestaurant").Info("restaurant deleted", zap.String("restaurant_id", id))
	return r, snap, nil
}

// ------------------------
// Menu items
// ------------------------

func validateMenuItem(id string, m MenuItem) error {
	if strings.TrimSpace(m.Name) == "" {
		return apperr.Validation("MenuItem", id, "name is required")
	}
	if m.Price < 0 {
		return apperr.Validation("MenuItem", id, "price must not be negative")
	}
	if !(m.Price <= aggregate.MaxPrice) {
		return apperr.Validation("MenuItem", id, fmt.Sprintf("price must not exceed %.2f", aggregate.MaxPrice))
	}
	return nil
}

func (s *service) CreateMenuItem(ctx context.Context, in MenuItemInput) (MenuItem, *store.Snapshot, error) {
	m := MenuItem{
		ID:           s.newID(),
		RestaurantID: in.RestaurantID,
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		Price:        aggregate.RoundCents(in.Price),
	}
	if err := validateMenuItem("", m); err != nil {
		return MenuItem{}, nil, err
	}

	snap, err := s.store.Update(ctx, func(tx *store.Tx) error {
		if err := relation.Ref[Restaurant](tx, KindRestaurant, "MenuItem", "restaurantId", m.RestaurantID); err != nil {
			return err
		}
		return tx.Insert(KindMenuItem, m)
	})
	if err != nil {
		return MenuItem{}, nil, err
	}

	s.log(ctx, "CreateMenuItem").Info("menu item created",
		zap.String("menu_item_id", m.ID),
		zap.String("restaurant_id", m.RestaurantID),
	)
	return m, snap, nil
}

// UpdateMenuItem never touches orders already placed: their totals were
// fixed at creation.
func (s *service) UpdateMenuItem(ctx context.Context, id string, p MenuItemPatch) (MenuItem, *store.Snapshot, error) {
	var m MenuItem
	snap, err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		if m, err = relation.Must[MenuItem](tx, KindMenuItem, "MenuItem", id); err != nil {
			return err
		}
		p.Name.Apply(&m.Name)
		p.Description.Apply(&m.Description)
		p.Price.Apply(&m.Price)
		m.Price = aggregate.RoundCents(m.Price)
		if err := validateMenuItem(id, m); err != nil {
			return err
		}
		return tx.Replace(KindMenuItem, m)
	})
	if err != nil {
		return MenuItem{}, nil, err
	}
	return m, snap, nil
}

func (s *service) DeleteMenuItem(ctx context.Context, id string) (MenuItem, *store.Snapshot, error) {
	var m MenuItem
	snap, err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		if m, err = relation.Must[MenuItem](tx, KindMenuItem, "MenuItem", id); err != nil {
			return err
		}
		orders := relation.ReverseMany(tx, KindOrder, id, Order.menuItemIDs)
		if err := relation.Restrict("MenuItem", id, relation.Dependents{Name: "orders", N: len(orders)}); err != nil {
			return err
		}
		tx.Remove(KindMenuItem, id)
		return nil
	})
	if err != nil {
		return MenuItem{}, nil, err
	}
	return m, snap, nil
}

// ------------------------
// Reviews
// ------------------------

func validateReview(id string, r Review) error {
	if r.Rating < 1 || r.Rating > 5 {
		return apperr.Validation("Review", id, "rating must be between 1 and 5")
	}
	return nil
}

func (s *service) CreateReview(ctx context.Context, in ReviewInput) (Review, *store.Snapshot, error) {
	r := Review{
		ID:           s.newID(),
		UserID:       in.UserID,
		RestaurantID: in.RestaurantID,
		Rating:       in.Rating,
		Comment:      in.Comment,
	}
	if err := validateReview("", r); err != nil {
		return Review{}, nil, err
	}

	snap, err := s.store.Update(ctx, func(tx *store.Tx) error {
		if err := relation.Ref[User](tx, KindUser, "Review", "userId", r.UserID); err != nil {
			return err
		}
		if err := relation.Ref[Restaurant](tx, KindRestaurant, "Review", "restaurantId", r.RestaurantID); err != nil {
			return err
		}
		return tx.Insert(KindReview, r)
	})
	if err != nil {
		return Review{}, nil, err
	}

	s.log(ctx, "CreateReview").Info("review created",
		zap.String("review_id", r.ID),
		zap.Int("rating", r.Rating),
	)
	return r, snap, nil
}

func (s *service) UpdateReview(ctx context.Context, id string, p ReviewPatch) (Review, *store.Snapshot, error) {
	var r Review
	snap, err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		if r, err = relation.Must[Review](tx, KindReview, "Review", id); err != nil {
			return err
		}
		p.Rating.Apply(&r.Rating)
		p.Comment.Apply(&r.Comment)
		if err := validateReview(id, r); err != nil {
			return err
		}
		return tx.Replace(KindReview, r)
	})
	if err != nil {
		return Review{}, nil, err
	}
	return r, snap, nil
}

func (s *service) DeleteReview(ctx context.Context, id string) (Review, *store.Snapshot, error) {
	var r Review
	snap, err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		if r, err = relation.Must[Review](tx, KindReview, "Review", id); err != nil {
			return err
		}
		tx.Remove(KindReview, id)
		return nil
	})
	if err != nil {
		return Review{}, nil, err
	}
	return r, snap, nil
}

// ------------------------
// Orders
// ------------------------

func (s *service) CreateOrder(ctx context.Context, in OrderInput) (Order, *store.Snapshot, error) {
	log := s.log(ctx, "CreateOrder").With(
		zap.String("user_id", in.UserID),
		zap.String("restaurant_id", in.RestaurantID),
		zap.Int("item_count", len(in.Items)),
	)

	if len(in.Items) == 0 {
		return Order{}, nil, apperr.Validation("Order", "", "items must not be empty")
	}
	lines := make([]aggregate.Line, 0, len(in.Items))
	seen := make(map[string]bool, len(in.Items))
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return Order{}, nil, apperr.Validation("Order", "", fmt.Sprintf("quantity of menuItemId %q must be positive", it.MenuItemID))
		}
		if it.Quantity > aggregate.MaxQuantity {
			return Order{}, nil, apperr.Validation("Order", "", fmt.Sprintf("quantity of menuItemId %q must not exceed %d", it.MenuItemID, aggregate.MaxQuantity))
		}
		if seen[it.MenuItemID] {
			return Order{}, nil, apperr.Validation("Order", "", fmt.Sprintf("menuItemId %q is listed twice", it.MenuItemID))
		}
		seen[it.MenuItemID] = true
		lines = append(lines, aggregate.Line{CatalogID: it.MenuItemID, Quantity: it.Quantity})
	}

	now := s.now().UTC()
	o := Order{
		ID:           s.newID(),
		UserID:       in.UserID,
		RestaurantID: in.RestaurantID,
		Items:        append([]OrderedItem(nil), in.Items...),
		Status:       StatusPlaced,
		PlacedAt:     now,
		UpdatedAt:    now,
	}

	snap, err := s.store.Update(ctx, func(tx *store.Tx) error {
		if err := relation.Ref[User](tx, KindUser, "Order", "userId", o.UserID); err != nil {
			return err
		}
		if err := relation.Ref[Restaurant](tx, KindRestaurant, "Order", "restaurantId", o.RestaurantID); err != nil {
			return err
		}

		for _, l := range lines {
			m, ok := store.Get[MenuItem](tx, KindMenuItem, l.CatalogID)
			if !ok {
				return apperr.MissingRef("Order", "", "menuItemId", l.CatalogID)
			}
			if m.RestaurantID != o.RestaurantID {
				return apperr.Validation("Order", "", fmt.Sprintf("menuItemId %q is not on the menu of restaurant %q", m.ID, o.RestaurantID))
			}
		}
		total, err := aggregate.OrderTotal(lines, func(id string) (float64, bool) {
			m, ok := store.Get[MenuItem](tx, KindMenuItem, id)
			return m.Price, ok
		})
		if err != nil {
			return err
		}
		o.TotalAmount = total
		return tx.Insert(KindOrder, o)
	})
	if err != nil {
		log.Warn("order rejected", zap.Error(err))
		return Order{}, nil, err
	}

	log.Info("order created",
		zap.String("order_id", o.ID),
		zap.Float64("total_amount", o.TotalAmount),
	)
	return o, snap, nil
}

func (s *service) CancelOrder(ctx context.Context, id string) (Order, *store.Snapshot, error) {
	return s.moveOrder(ctx, "CancelOrder", id, StatusCancelled)
}

func (s *service) UpdateOrderStatus(ctx context.Context, id string, status OrderStatus) (Order, *store.Snapshot, error) {
	return s.moveOrder(ctx, "UpdateOrderStatus", id, status)
}

func (s *service) moveOrder(ctx context.Context, method, id string, to OrderStatus) (Order, *store.Snapshot, error) {
	log := s.log(ctx, method).With(zap.String("order_id", id))

	var o Order
	var from OrderStatus
	snap, err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		if o, err = relation.Must[Order](tx, KindOrder, "Order", id); err != nil {
			return err
		}
		from = o.Status
		if err := from.CanMoveTo(id, to); err != nil {
			return err
		}
		o.Status = to
		o.UpdatedAt = s.now().UTC()
		return tx.Replace(KindOrder, o)
	})
	if err != nil {
		log.Warn("status change rejected", zap.String("to", string(to)), zap.Error(err))
		return Order{}, nil, err
	}

	log.Info("order status changed",
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	return o, snap, nil
}

func (s *service) DeleteOrder(ctx context.Context, id string) (Order, *store.Snapshot, error) {
	var o Order
	snap, err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		if o, err = relation.Must[Order](tx, KindOrder, "Order", id); err != nil {
			return err
		}
		tx.Remove(KindOrder, id)
		return nil
	})
	if err != nil {
		return Order{}, nil, err
	}

	s.log(ctx, "DeleteOrder").Info("order deleted", zap.String("order_id", id))
	return o, snap, nil
}
