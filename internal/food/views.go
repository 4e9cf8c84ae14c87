package food

import (
	"time"

	"fixture-graph/internal/facade"
	"fixture-graph/internal/relation"
	"fixture-graph/internal/store"
)

// Views bind a stored record to the session that fetched it. Nested fields
// are derived from that session's snapshot only, so every field of one
// response sees the same state.

type RestaurantView struct {
	sess *facade.Session
	r    Restaurant
}

func (v *RestaurantView) Id() string          { return v.r.ID }
func (v *RestaurantView) Name() string        { return v.r.Name }
func (v *RestaurantView) Description() string { return v.r.Description }

func (v *RestaurantView) Menu() []*MenuItemView {
	items := relation.Indexed(v.sess.Snapshot, KindMenuItem, "restaurant", v.r.ID, func(m MenuItem) string { return m.RestaurantID })
	return menuItemViews(v.sess, items)
}

func (v *RestaurantView) Reviews() []*ReviewView {
	reviews := relation.Indexed(v.sess.Snapshot, KindReview, "restaurant", v.r.ID, func(r Review) string { return r.RestaurantID })
	return reviewViews(v.sess, reviews)
}

func (v *RestaurantView) Orders() []*OrderView {
	orders := relation.Indexed(v.sess.Snapshot, KindOrder, "restaurant", v.r.ID, func(o Order) string { return o.RestaurantID })
	return orderViews(v.sess, orders)
}

type MenuItemView struct {
	sess *facade.Session
	m    MenuItem
}

func (v *MenuItemView) Id() string          { return v.m.ID }
func (v *MenuItemView) Name() string        { return v.m.Name }
func (v *MenuItemView) Description() string { return v.m.Description }
func (v *MenuItemView) Price() float64      { return v.m.Price }

func (v *MenuItemView) Restaurant() *RestaurantView {
	return restaurantRef(v.sess, v.m.RestaurantID)
}

type UserView struct {
	sess *facade.Session
	u    User
}

func (v *UserView) Id() string       { return v.u.ID }
func (v *UserView) Username() string { return v.u.Username }
func (v *UserView) Email() string    { return v.u.Email }

func (v *UserView) Orders() []*OrderView {
	orders := relation.Indexed(v.sess.Snapshot, KindOrder, "user", v.u.ID, func(o Order) string { return o.UserID })
	return orderViews(v.sess, orders)
}

func (v *UserView) Reviews() []*ReviewView {
	reviews := relation.Indexed(v.sess.Snapshot, KindReview, "user", v.u.ID, func(r Review) string { return r.UserID })
	return reviewViews(v.sess, reviews)
}

type ReviewView struct {
	sess *facade.Session
	r    Review
}

func (v *ReviewView) Id() string      { return v.r.ID }
func (v *ReviewView) Rating() int     { return v.r.Rating }
func (v *ReviewView) Comment() string { return v.r.Comment }

func (v *ReviewView) User() *UserView {
	return userRef(v.sess, v.r.UserID)
}

func (v *ReviewView) Restaurant() *RestaurantView {
	return restaurantRef(v.sess, v.r.RestaurantID)
}

type OrderView struct {
	sess *facade.Session
	o    Order
}

func (v *OrderView) Id() string           { return v.o.ID }
func (v *OrderView) TotalAmount() float64 { return v.o.TotalAmount }
func (v *OrderView) Status() string       { return string(v.o.Status) }
func (v *OrderView) PlacedAt() string     { return v.o.PlacedAt.Format(time.RFC3339) }

func (v *OrderView) User() *UserView {
	return userRef(v.sess, v.o.UserID)
}

func (v *OrderView) Restaurant() *RestaurantView {
	return restaurantRef(v.sess, v.o.RestaurantID)
}

func (v *OrderView) Items() []*OrderedItemView {
	out := make([]*OrderedItemView, len(v.o.Items))
	for i, it := range v.o.Items {
		out[i] = &OrderedItemView{sess: v.sess, it: it}
	}
	return out
}

type OrderedItemView struct {
	sess *facade.Session
	it   OrderedItem
}

func (v *OrderedItemView) Quantity() int { return v.it.Quantity }

func (v *OrderedItemView) MenuItem() *MenuItemView {
	m, ok := relation.Forward[MenuItem](v.sess.Snapshot, KindMenuItem, v.it.MenuItemID)
	if !ok {
		return nil
	}
	return &MenuItemView{sess: v.sess, m: m}
}

// A link whose target id no longer exists resolves to nil.

func restaurantRef(sess *facade.Session, id string) *RestaurantView {
	r, ok := relation.Forward[Restaurant](sess.Snapshot, KindRestaurant, id)
	if !ok {
		return nil
	}
	return &RestaurantView{sess: sess, r: r}
}

func userRef(sess *facade.Session, id string) *UserView {
	u, ok := relation.Forward[User](sess.Snapshot, KindUser, id)
	if !ok {
		return nil
	}
	return &UserView{sess: sess, u: u}
}

func restaurantViews(sess *facade.Session, rs []Restaurant) []*RestaurantView {
	out := make([]*RestaurantView, len(rs))
	for i, r := range rs {
		out[i] = &RestaurantView{sess: sess, r: r}
	}
	return out
}

func menuItemViews(sess *facade.Session, ms []MenuItem) []*MenuItemView {
	out := make([]*MenuItemView, len(ms))
	for i, m := range ms {
		out[i] = &MenuItemView{sess: sess, m: m}
	}
	return out
}

func userViews(sess *facade.Session, us []User) []*UserView {
	out := make([]*UserView, len(us))
	for i, u := range us {
		out[i] = &UserView{sess: sess, u: u}
	}
	return out
}

func reviewViews(sess *facade.Session, rs []Review) []*ReviewView {
	out := make([]*ReviewView, len(rs))
	for i, r := range rs {
		out[i] = &ReviewView{sess: sess, r: r}
	}
	return out
}

func orderViews(sess *facade.Session, os []Order) []*OrderView {
	out := make([]*OrderView, len(os))
	for i, o := range os {
		out[i] = &OrderView{sess: sess, o: o}
	}
	return out
}

// lookup returns a view of kind/id in sess, or nil when there is none.
func lookup[T store.Entity, V any](sess *facade.Session, kind store.Kind, id string, view func(*facade.Session, T) *V) *V {
	e, ok := store.Get[T](sess.Snapshot, kind, id)
	if !ok {
		return nil
	}
	return view(sess, e)
}

func newRestaurantView(sess *facade.Session, r Restaurant) *RestaurantView {
	return &RestaurantView{sess: sess, r: r}
}

func newMenuItemView(sess *facade.Session, m MenuItem) *MenuItemView {
	return &MenuItemView{sess: sess, m: m}
}

func newUserView(sess *facade.Session, u User) *UserView {
	return &UserView{sess: sess, u: u}
}

func newReviewView(sess *facade.Session, r Review) *ReviewView {
	return &ReviewView{sess: sess, r: r}
}

func newOrderView(sess *facade.Session, o Order) *OrderView {
	return &OrderView{sess: sess, o: o}
}
