// Package seed loads the sample fixtures through the domain services, so
// every record passes the same rules a client mutation would.
package seed

import (
	"context"
	_ "embed"
	"fmt"

	"fixture-graph/internal/food"
	"fixture-graph/internal/logger"
	"fixture-graph/internal/store"
	"fixture-graph/internal/wallet"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

type Fixtures struct {
	Food   FoodSet   `yaml:"food"`
	Wallet WalletSet `yaml:"wallet"`
}

type FoodSet struct {
	Restaurants []struct {
		Key         string `yaml:"key"`
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	} `yaml:"restaurants"`
	Menu []struct {
		Key         string  `yaml:"key"`
		Restaurant  string  `yaml:"restaurant"`
		Name        string  `yaml:"name"`
		Description string  `yaml:"description"`
		Price       float64 `yaml:"price"`
	} `yaml:"menu"`
	Users []struct {
		Key      string `yaml:"key"`
		Username string `yaml:"username"`
		Email    string `yaml:"email"`
	} `yaml:"users"`
	Reviews []struct {
		User       string `yaml:"user"`
		Restaurant string `yaml:"restaurant"`
		Rating     int    `yaml:"rating"`
		Comment    string `yaml:"comment"`
	} `yaml:"reviews"`
	Orders []struct {
		User       string      `yaml:"user"`
		Restaurant string      `yaml:"restaurant"`
		Status     string      `yaml:"status"`
		Items      []OrderLine `yaml:"items"`
	} `yaml:"orders"`
}

type OrderLine struct {
	Item     string `yaml:"item"`
	Quantity int    `yaml:"quantity"`
}

type WalletSet struct {
	Currencies []struct {
		Key          string `yaml:"key"`
		Abbreviation string `yaml:"abbreviation"`
		Symbol       string `yaml:"symbol"`
		Country      string `yaml:"country"`
	} `yaml:"currencies"`
	Users []struct {
		Key         string `yaml:"key"`
		FirstName   string `yaml:"firstName"`
		LastName    string `yaml:"lastName"`
		Description string `yaml:"description"`
	} `yaml:"users"`
	Friends   [][]string `yaml:"friends"`
	Locations []struct {
		Key  string  `yaml:"key"`
		Name string  `yaml:"name"`
		Lat  float64 `yaml:"lat"`
		Lng  float64 `yaml:"lng"`
	} `yaml:"locations"`
	Wallets []struct {
		Key      string `yaml:"key"`
		Name     string `yaml:"name"`
		User     string `yaml:"user"`
		Currency string `yaml:"currency"`
	} `yaml:"wallets"`
	Transactions []struct {
		Wallet      string  `yaml:"wallet"`
		Payer       string  `yaml:"payer"`
		Currency    string  `yaml:"currency"`
		Location    string  `yaml:"location"`
		Amount      float64 `yaml:"amount"`
		Description string  `yaml:"description"`
	} `yaml:"transactions"`
}

// Default returns the built-in sample data.
func Default() (*Fixtures, error) {
	return Parse(defaultFixtures)
}

func Parse(data []byte) (*Fixtures, error) {
	var fx Fixtures
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("seed: parse fixtures: %w", err)
	}
	return &fx, nil
}

// keys maps fixture keys to the ids the services generated.
type keys map[string]string

func (k keys) add(key, id string) error {
	if key == "" {
		return nil
	}
	if _, dup := k[key]; dup {
		return fmt.Errorf("seed: duplicate key %q", key)
	}
	k[key] = id
	return nil
}

func (k keys) get(key string) (string, error) {
	if key == "" {
		return "", nil
	}
	id, ok := k[key]
	if !ok {
		return "", fmt.Errorf("seed: unknown key %q", key)
	}
	return id, nil
}

// Collections each domain owns.
var (
	FoodKinds   = []store.Kind{food.KindRestaurant, food.KindMenuItem, food.KindUser, food.KindReview, food.KindOrder}
	WalletKinds = []store.Kind{wallet.KindCurrency, wallet.KindUser, wallet.KindLocation, wallet.KindWallet, wallet.KindTransaction}
)

// Populated reports whether r already holds any record of kinds.
func Populated(r store.Reader, kinds ...store.Kind) bool {
	for _, k := range kinds {
		if r.Count(k) > 0 {
			return true
		}
	}
	return false
}

// Into seeds st with a single commit. build runs the fixtures through
// services bound to a scratch store, and the records it leaves there are
// copied into st by one Update. When st already holds any of kinds nothing
// is written. Into reports whether st changed.
func Into(ctx context.Context, st *store.Store, kinds []store.Kind, build func(scratch *store.Store) error) (bool, error) {
	if Populated(st.Snapshot(), kinds...) {
		return false, nil
	}
	scratch := store.New()
	if err := build(scratch); err != nil {
		return false, err
	}
	src := scratch.Snapshot()

	seeded := false
	_, err := st.Update(ctx, func(tx *store.Tx) error {
		if Populated(tx, kinds...) {
			return nil
		}
		for _, k := range kinds {
			for _, e := range src.List(k) {
				if err := tx.Insert(k, e); err != nil {
					return err
				}
			}
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("seed: commit: %w", err)
	}
	return seeded, nil
}

// Food creates fs through svc. Orders are walked through the lifecycle to
// reach their fixture status.
func Food(ctx context.Context, svc food.Service, fs FoodSet) error {
	log := logger.FromCtx(ctx).With(zap.String("layer", "seed"), zap.String("domain", "food"))
	ids := keys{}

	for _, r := range fs.Restaurants {
		v, _, err := svc.CreateRestaurant(ctx, food.RestaurantInput{Name: r.Name, Description: r.Description})
		if err != nil {
			return fmt.Errorf("seed: restaurant %s: %w", r.Key, err)
		}
		if err := ids.add(r.Key, v.ID); err != nil {
			return err
		}
	}
	for _, m := range fs.Menu {
		rid, err := ids.get(m.Restaurant)
		if err != nil {
			return err
		}
		v, _, err := svc.CreateMenuItem(ctx, food.MenuItemInput{
			RestaurantID: rid,
			Name:         m.Name,
			Description:  m.Description,
			Price:        m.Price,
		})
		if err != nil {
			return fmt.Errorf("seed: menu item %s: %w", m.Key, err)
		}
		if err := ids.add(m.Key, v.ID); err != nil {
			return err
		}
	}
	for _, u := range fs.Users {
		v, _, err := svc.CreateUser(ctx, food.UserInput{Username: u.Username, Email: u.Email})
		if err != nil {
			return fmt.Errorf("seed: user %s: %w", u.Key, err)
		}
		if err := ids.add(u.Key, v.ID); err != nil {
			return err
		}
	}
	for i, r := range fs.Reviews {
		uid, err := ids.get(r.User)
		if err != nil {
			return err
		}
		rid, err := ids.get(r.Restaurant)
		if err != nil {
			return err
		}
		in := food.ReviewInput{UserID: uid, RestaurantID: rid, Rating: r.Rating, Comment: r.Comment}
		if _, _, err := svc.CreateReview(ctx, in); err != nil {
			return fmt.Errorf("seed: review %d: %w", i, err)
		}
	}
	for i, o := range fs.Orders {
		if err := placeOrder(ctx, svc, ids, o.User, o.Restaurant, o.Status, o.Items); err != nil {
			return fmt.Errorf("seed: order %d: %w", i, err)
		}
	}

	log.Info("fixtures loaded",
		zap.Int("restaurants", len(fs.Restaurants)),
		zap.Int("orders", len(fs.Orders)),
	)
	return nil
}

// delivery is the happy path of an order.
var delivery = []food.OrderStatus{food.StatusPreparing, food.StatusOutForDelivery, food.StatusDelivered}

func placeOrder(ctx context.Context, svc food.Service, ids keys, user, restaurant, status string, items []OrderLine) error {
	in := food.OrderInput{}
	var err error
	if in.UserID, err = ids.get(user); err != nil {
		return err
	}
	if in.RestaurantID, err = ids.get(restaurant); err != nil {
		return err
	}
	for _, it := range items {
		mid, err := ids.get(it.Item)
		if err != nil {
			return err
		}
		in.Items = append(in.Items, food.OrderedItem{MenuItemID: mid, Quantity: it.Quantity})
	}

	target := food.StatusPlaced
	if status != "" {
		if target, err = food.ParseOrderStatus(status); err != nil {
			return err
		}
	}

	o, _, err := svc.CreateOrder(ctx, in)
	if err != nil {
		return err
	}
	if target == food.StatusCancelled {
		_, _, err = svc.CancelOrder(ctx, o.ID)
		return err
	}
	for _, st := range delivery {
		if o.Status == target {
			break
		}
		if o, _, err = svc.UpdateOrderStatus(ctx, o.ID, st); err != nil {
			return err
		}
	}
	return nil
}

// Wallet creates ws through svc.
func Wallet(ctx context.Context, svc wallet.Service, ws WalletSet) error {
	log := logger.FromCtx(ctx).With(zap.String("layer", "seed"), zap.String("domain", "wallet"))
	ids := keys{}

	for _, c := range ws.Currencies {
		v, _, err := svc.CreateCurrency(ctx, wallet.CurrencyInput{
			Abbreviation: c.Abbreviation,
			Symbol:       c.Symbol,
			Country:      c.Country,
		})
		if err != nil {
			return fmt.Errorf("seed: currency %s: %w", c.Key, err)
		}
		if err := ids.add(c.Key, v.ID); err != nil {
			return err
		}
	}
	for _, u := range ws.Users {
		v, _, err := svc.CreateUser(ctx, wallet.UserInput{
			FirstName:   u.FirstName,
			LastName:    u.LastName,
			Description: u.Description,
		})
		if err != nil {
			return fmt.Errorf("seed: user %s: %w", u.Key, err)
		}
		if err := ids.add(u.Key, v.ID); err != nil {
			return err
		}
	}
	for _, pair := range ws.Friends {
		if len(pair) != 2 {
			return fmt.Errorf("seed: friends entry %v is not a pair", pair)
		}
		a, err := ids.get(pair[0])
		if err != nil {
			return err
		}
		b, err := ids.get(pair[1])
		if err != nil {
			return err
		}
		if _, _, err := svc.AddFriend(ctx, a, b); err != nil {
			return fmt.Errorf("seed: friends %s/%s: %w", pair[0], pair[1], err)
		}
	}
	for _, l := range ws.Locations {
		v, _, err := svc.CreateLocation(ctx, wallet.LocationInput{Lat: l.Lat, Lng: l.Lng, Name: l.Name})
		if err != nil {
			return fmt.Errorf("seed: location %s: %w", l.Key, err)
		}
		if err := ids.add(l.Key, v.ID); err != nil {
			return err
		}
	}
	for _, w := range ws.Wallets {
		in := wallet.WalletInput{Name: w.Name}
		var err error
		if in.UserID, err = ids.get(w.User); err != nil {
			return err
		}
		if in.CurrencyID, err = ids.get(w.Currency); err != nil {
			return err
		}
		v, _, err := svc.CreateWallet(ctx, in)
		if err != nil {
			return fmt.Errorf("seed: wallet %s: %w", w.Key, err)
		}
		if err := ids.add(w.Key, v.ID); err != nil {
			return err
		}
	}
	for i, t := range ws.Transactions {
		in := wallet.TransactionInput{Amount: t.Amount, Description: t.Description}
		var err error
		if in.WalletID, err = ids.get(t.Wallet); err != nil {
			return err
		}
		if in.PayerID, err = ids.get(t.Payer); err != nil {
			return err
		}
		if in.CurrencyID, err = ids.get(t.Currency); err != nil {
			return err
		}
		if in.LocationID, err = ids.get(t.Location); err != nil {
			return err
		}
		if _, _, err := svc.CreateTransaction(ctx, in); err != nil {
			return fmt.Errorf("seed: transaction %d: %w", i, err)
		}
	}

	log.Info("fixtures loaded",
		zap.Int("users", len(ws.Users)),
		zap.Int("transactions", len(ws.Transactions)),
	)
	return nil
}
