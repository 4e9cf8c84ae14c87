package wallet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fixture-graph/internal/aggregate"
	"fixture-graph/internal/apperr"
	"fixture-graph/internal/logger"
	"fixture-graph/internal/patch"
	"fixture-graph/internal/rates"
	"fixture-graph/internal/relation"
	"fixture-graph/internal/store"

	"go.uber.org/zap"
)

type UserPatch struct {
	FirstName   patch.Field[string]
	LastName    patch.Field[string]
	Description patch.Field[string]
}

type CurrencyPatch struct {
	Abbreviation patch.Field[string]
	Symbol       patch.Field[string]
	Country      patch.Field[string]
}

type LocationPatch struct {
	Lat  patch.Field[float64]
	Lng  patch.Field[float64]
	Name patch.Field[string]
}

type WalletPatch struct {
	Name patch.Field[string]
}

type TransactionPatch struct {
	Amount      patch.Field[float64]
	PayerID     patch.Field[string]
	Description patch.Field[string]
	LocationID  patch.Field[string]
}

type Service interface {
	CreateUser(ctx context.Context, in UserInput) (User, *store.Snapshot, error)
	UpdateUser(ctx context.Context, id string, p UserPatch) (User, *store.Snapshot, error)
	DeleteUser(ctx context.Context, id string) (User, *store.Snapshot, error)
	AddFriend(ctx context.Context, userID, friendID string) (User, *store.Snapshot, error)
	RemoveFriend(ctx context.Context, userID, friendID string) (User, *store.Snapshot, error)

	CreateCurrency(ctx context.Context, in CurrencyInput) (Currency, *store.Snapshot, error)
	UpdateCurrency(ctx context.Context, id string, p CurrencyPatch) (Currency, *store.Snapshot, error)
	DeleteCurrency(ctx context.Context, id string) (Currency, *store.Snapshot, error)

	CreateLocation(ctx context.Context, in LocationInput) (Location, *store.Snapshot, error)
	UpdateLocation(ctx context.Context, id string, p LocationPatch) (Location, *store.Snapshot, error)
	DeleteLocation(ctx context.Context, id string) (Location, *store.Snapshot, error)

	CreateWallet(ctx context.Context, in WalletInput) (Wallet, *store.Snapshot, error)
	UpdateWallet(ctx context.Context, id string, p WalletPatch) (Wallet, *store.Snapshot, error)
	DeleteWallet(ctx context.Context, id string) (Wallet, *store.Snapshot, error)

	CreateTransaction(ctx context.Context, in TransactionInput) (Transaction, *store.Snapshot, error)
	UpdateTransaction(ctx context.Context, id string, p TransactionPatch) (Transaction, *store.Snapshot, error)
	DeleteTransaction(ctx context.Context, id string) (Transaction, *store.Snapshot, error)
}

type service struct {
	store *store.Store
	rates rates.Source
	now   func() time.Time
	newID func() string
}

type Option func(*service)

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func WithIDs(newID func() string) Option {
	return func(s *service) { s.newID = newID }
}

// NewService builds the wallet mutation engine. src prices new
// transactions; nil means every currency trades at 1.
func NewService(st *store.Store, src rates.Source, opts ...Option) Service {
	if src == nil {
		src = rates.Identity{}
	}
	s := &service{
		store: st,
		rates: src,
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

func required(entity, id, field, v string) error {
	if strings.TrimSpace(v) == "" {
		return apperr.Validation(entity, id, field+" is required")
	}
	return nil
}

// ------------------------
// Users
// ------------------------

func validateUser(id string, u User) error {
	if err := required("User", id, "firstName", u.FirstName); err != nil {
		return err
	}
	return required("User", id, "lastName", u.LastName)
}

func (s *service) CreateUser(ctx context.Context, in UserInput) (User, *store.Snapshot, error) {
	u := User{
		ID:          s.newID(),
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    strings.TrimSpace(in.LastName),
		Description: in.Description,
	}
	if err := validateUser("", u); err != nil {
		return User{}, nil, err
	}

	snap, err := s.store.Update(ctx, func(tx *store.Tx) error {
		return tx.Insert(KindUser, u)
	})
	if err != nil {
		return User{}, nil, err
	}

	s.log(ctx, "CreateUser").Info("user created", zap.String("user_id", u.ID))
	return u, snap, nil
}

func (s *service) UpdateUser(ctx context.Context, id string, p UserPatch) (User, *store.Snapshot, error) {
	var u User
	snap, err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		if u, err = relation.Must[User](tx, KindUser, "User", id); err != nil {
			return err
		}
		p.FirstName.Apply(&u.FirstName)
		p.LastName.Apply(&u.LastName)
		p.Description.Apply(&u.Description)
		if err := validateUser(id, u); err != nil {
			return err
		}
		return tx.Replace(KindUser, u)
	})
	if err != nil {
		return User{}, nil, err
	}
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
			relation.Dependents{Name: "wallets", N: relation.Count(tx, KindWallet, id, func(w Wallet) string { return w.UserID })},
			relation.Dependents{Name: "paid transactions", N: relation.Count(tx, KindTransaction, id, func(t Transaction) string { return t.PayerID })},
			relation.Dependents{Name: "friends", N: len(relation.ReverseMany(tx, KindUser, id, User.friendIDs))},
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

func (s *service) AddFriend(ctx context.Context, userID, friendID string) (User, *store.Snapshot, error) {
	return s.link(ctx, "AddFriend", userID, friendID, true)
}

func (s *service) RemoveFriend(ctx context.Context, userID, friendID string) (User, *store.Snapshot, error) {
	return s.link(ctx, "RemoveFriend", userID, friendID, false)
}

// link adds or removes the friendship on both users in one change set.
func (s *service) link(ctx context.Context, method, userID, friendID string, on bool) (User, *store.Snapshot, error) {
	if userID == friendID {
		return User{}, nil, apperr.Validation("User", userID, "a user cannot befriend themselves")
	}

	var u User
	snap, err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		if u, err = relation.Must[User](tx, KindUser, "User", userID); err != nil {
			return err
		}
		friend, err := relation.Must[User](tx, KindUser, "User", friendID)
		if err != nil {
			return err
		}
		if u.hasFriend(friendID) == on {
			return nil
		}
		u = withFriend(u, friendID, on)
		if err := tx.Replace(KindUser, u); err != nil {
			return err
		}
		return tx.Replace(KindUser, withFriend(friend, userID, on))
	})
	if err != nil {
		return User{}, nil, err
	}

	s.log(ctx, method).Info("friendship changed",
		zap.String("user_id", userID),
		zap.String("friend_id", friendID),
		zap.Bool("linked", on),
	)
	return u, snap, nil
}

// withFriend returns u with id added to or dropped from a fresh friend list.
func withFriend(u User, id string, on bool) User {
	friends := make([]string, 0, len(u.Friends)+1)
	for _, f := range u.Friends {
		if f != id {
			friends = append(friends, f)
		}
	}
	if on {
		friends = append(friends, id)
	}
	u.Friends = friends
	return u
}

// ------------------------
// Currencies
// ------------------------

func validateCurrency(tx *store.Tx, id string, c Currency) error {
	if err := required("Currency", id, "abbreviation", c.Abbreviation); err != nil {
		return err
	}
	if err := required("Currency", id, "symbol", c.Symbol); err != nil {
		return err
	}
	for _, other := range store.List[Currency](tx, KindCurrency) {
		if other.ID != c.ID && other.Abbreviation == c.Abbreviation {
			return apperr.Validation("Currency", id, fmt.Sprintf("abbreviation %s is already used", c.Abbreviation))
		}
	}
	return nil
}

func (s *service) CreateCurrency(ctx context.Context, in CurrencyInput) (Currency, *store.Snapshot, error) {
	c := Currency{
		ID:           s.newID(),
		Abbreviation: strings.ToUpper(strings.TrimSpace(in.Abbreviation)),
		Symbol:       in.Symbol,
		Country:      in.Country,
	}

	snap, err := s.store.Update(ctx, func(tx *store.Tx) error {
		if err := validateCurrency(tx, "", c); err != nil {
			return err
		}
		return tx.Insert(KindCurrency, c)
	})
	if err != nil {
		return Currency{}, nil, err
	}

	s.log(ctx, "CreateCurrency").Info("currency created",
		zap.String("currency_id", c.ID),
		zap.String("abbreviation", c.Abbreviation),
	)
	return c, snap, nil
}

func (s *service) UpdateCurrency(ctx context.Context, id string, p CurrencyPatch) (Currency, *store.Snapshot, error) {
	var c Currency
	snap, err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		if c, err = relation.Must[Currency](tx, KindCurrency, "Currency", id); err != nil {
			return err
		}
		p.Abbreviation.Apply(&c.Abbreviation)
		p.Symbol.Apply(&c.Symbol)
		p.Country.Apply(&c.Country)
		c.Abbreviation = strings.ToUpper(strings.TrimSpace(c.Abbreviation))
		if err := validateCurrency(tx, id, c); err != nil {
			return err
		}
		return tx.Replace(KindCurrency, c)
	})
	if err != nil {
		return Currency{}, nil, err
	}
	return c, snap, nil
}

func (s *service) DeleteCurrency(ctx context.Context, id string) (Currency, *store.Snapshot, error) {
	var c Currency
	snap, err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		if c, err = relation.Must[Currency](tx, KindCurrency, "Currency", id); err != nil {
			return err
		}
		if err := relation.Restrict("Currency", id,
			relation.Dependents{Name: "wallets", N: relation.Count(tx, KindWallet, id, func(w Wallet) string { return w.CurrencyID })},
			relation.Dependents{Name: "transactions", N: relation.Count(tx, KindTransaction, id, func(t Transaction) string { return t.CurrencyID })},
		); err != nil {
			return err
		}
		tx.Remove(KindCurrency, id)
		return nil
	})
	if err != nil {
		return Currency{}, nil, err
	}
	return c, snap, nil
}

// ------------------------
// Locations
// ------------------------

func validateLocation(id string, l Location) error {
	if l.Lat < -90 || l.Lat > 90 {
		return apperr.Validation("Location", id, "lat must be between -90 and 90")
	}
	if l.Lng < -180 || l.Lng > 180 {
		return apperr.Validation("Location", id, "lng must be between -180 and 180")
	}
	return nil
}

func (s *service) CreateLocation(ctx context.Context, in LocationInput) (Location, *store.Snapshot, error) {
	l := Location{ID: s.newID(), Lat: in.Lat, Lng: in.Lng, Name: in.Name}
	if err := validateLocation("", l); err != nil {
		return Location{}, nil, err
	}

	snap, err := s.store.Update(ctx, func(tx *store.Tx) error {
		return tx.Insert(KindLocation, l)
	})
	if err != nil {
		return Location{}, nil, err
	}
	return l, snap, nil
}

func (s *service) UpdateLocation(ctx context.Context, id string, p LocationPatch) (Location, *store.Snapshot, error) {
	var l Location
	snap, err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		if l, err = relation.Must[Location](tx, KindLocation, "Location", id); err != nil {
			return err
		}
		p.Lat.Apply(&l.Lat)
		p.Lng.Apply(&l.Lng)
		p.Name.Apply(&l.Name)
		if err := validateLocation(id, l); err != nil {
			return err
		}
		return tx.Replace(KindLocation, l)
	})
	if err != nil {
		return Location{}, nil, err
	}
	return l, snap, nil
}

func (s *service) DeleteLocation(ctx context.Context, id string) (Location, *store.Snapshot, error) {
	var l Location
	snap, err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		if l, err = relation.Must[Location](tx, KindLocation, "Location", id); err != nil {
			return err
		}
		if err := relation.Restrict("Location", id,
			relation.Dependents{Name: "transactions", N: relation.Count(tx, KindTransaction, id, func(t Transaction) string { return t.LocationID })},
		); err != nil {
			return err
		}
		tx.Remove(KindLocation, id)
		return nil
	})
	if err != nil {
		return Location{}, nil, err
	}
	return l, snap, nil
}

// ------------------------
// Wallets
// ------------------------

func (s *service) CreateWallet(ctx context.Context, in WalletInput) (Wallet, *store.Snapshot, error) {
	w := Wallet{ID: s.newID(), Name: strings.TrimSpace(in.Name), UserID: in.UserID, CurrencyID: in.CurrencyID}
	if err := required("Wallet", "", "name", w.Name); err != nil {
		return Wallet{}, nil, err
	}

	snap, err := s.store.Update(ctx, func(tx *store.Tx) error {
		if err := relation.Ref[User](tx, KindUser, "Wallet", "userID", w.UserID); err != nil {
			return err
		}
		if err := relation.Ref[Currency](tx, KindCurrency, "Wallet", "currencyID", w.CurrencyID); err != nil {
			return err
		}
		return tx.Insert(KindWallet, w)
	})
	if err != nil {
		return Wallet{}, nil, err
	}

	s.log(ctx, "CreateWallet").Info("wallet created",
		zap.String("wallet_id", w.ID),
		zap.String("user_id", w.UserID),
	)
	return w, snap, nil
}

func (s *service) UpdateWallet(ctx context.Context, id string, p WalletPatch) (Wallet, *store.Snapshot, error) {
	var w Wallet
	snap, err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		if w, err = relation.Must[Wallet](tx, KindWallet, "Wallet", id); err != nil {
			return err
		}
		p.Name.Apply(&w.Name)
		if err := required("Wallet", id, "name", w.Name); err != nil {
			return err
		}
		return tx.Replace(KindWallet, w)
	})
	if err != nil {
		return Wallet{}, nil, err
	}
	return w, snap, nil
}

func (s *service) DeleteWallet(ctx context.Context, id string) (Wallet, *store.Snapshot, error) {
	var w Wallet
	snap, err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		if w, err = relation.Must[Wallet](tx, KindWallet, "Wallet", id); err != nil {
			return err
		}
		if err := relation.Restrict("Wallet", id,
			relation.Dependents{Name: "transactions", N: relation.Count(tx, KindTransaction, id, func(t Transaction) string { return t.WalletID })},
		); err != nil {
			return err
		}
		tx.Remove(KindWallet, id)
		return nil
	})
	if err != nil {
		return Wallet{}, nil, err
	}

	s.log(ctx, "DeleteWallet").Info("wallet deleted", zap.String("wallet_id", id))
	return w, snap, nil
}

// ------------------------
// Transactions
// ------------------------

func validateAmount(id string, amount float64) error {
	if amount <= 0 {
		return apperr.Validation("Transaction", id, "amount must be positive")
	}
	return nil
}

// CreateTransaction prices the transaction into the wallet's currency. The
// rate lookup runs inside the write, so it is bounded by the source's own
// timeout.
func (s *service) CreateTransaction(ctx context.Context, in TransactionInput) (Transaction, *store.Snapshot, error) {
	log := s.log(ctx, "CreateTransaction").With(
		zap.String("wallet_id", in.WalletID),
		zap.String("payer_id", in.PayerID),
	)

	t := Transaction{
		ID:          s.newID(),
		Amount:      aggregate.RoundCents(in.Amount),
		PayerID:     in.PayerID,
		WalletID:    in.WalletID,
		CurrencyID:  in.CurrencyID,
		LocationID:  in.LocationID,
		Description: in.Description,
		Timestamp:   s.now().UTC(),
	}
	if err := validateAmount("", t.Amount); err != nil {
		return Transaction{}, nil, err
	}

	snap, err := s.store.Update(ctx, func(tx *store.Tx) error {
		if err := relation.Ref[User](tx, KindUser, "Transaction", "payerID", t.PayerID); err != nil {
			return err
		}
		if err := relation.Ref[Wallet](tx, KindWallet, "Transaction", "walletID", t.WalletID); err != nil {
			return err
		}
		if err := relation.Ref[Currency](tx, KindCurrency, "Transaction", "currencyID", t.CurrencyID); err != nil {
			return err
		}
		if t.LocationID != "" {
			if err := relation.Ref[Location](tx, KindLocation, "Transaction", "locationID", t.LocationID); err != nil {
				return err
			}
		}

		rate, err := s.rateInto(ctx, tx, t)
		if err != nil {
			return err
		}
		t.Rate = rate
		return tx.Insert(KindTransaction, t)
	})
	if err != nil {
		log.Warn("transaction rejected", zap.Error(err))
		return Transaction{}, nil, err
	}

	log.Info("transaction created",
		zap.String("transaction_id", t.ID),
		zap.Float64("amount", t.Amount),
		zap.Float64("rate", t.Rate),
	)
	return t, snap, nil
}

func (s *service) rateInto(ctx context.Context, r store.Reader, t Transaction) (float64, error) {
	w, _ := store.Get[Wallet](r, KindWallet, t.WalletID)
	from, _ := store.Get[Currency](r, KindCurrency, t.CurrencyID)
	to, ok := store.Get[Currency](r, KindCurrency, w.CurrencyID)
	if !ok {
		return 0, apperr.MissingRef("Wallet", w.ID, "currencyID", w.CurrencyID)
	}
	rate, err := s.rates.Rate(ctx, from.Abbreviation, to.Abbreviation)
	if err != nil {
		if apperr.IsTaxonomy(err) {
			return 0, err
		}
		return 0, apperr.RateUnavailable(from.Abbreviation, to.Abbreviation, err)
	}
	if rate <= 0 {
		return 0, apperr.RateUnavailable(from.Abbreviation, to.Abbreviation, fmt.Errorf("non-positive rate %v", rate))
	}
	return rate, nil
}

// UpdateTransaction keeps the rate it was created with.
func (s *service) UpdateTransaction(ctx context.Context, id string, p TransactionPatch) (Transaction, *store.Snapshot, error) {
	var t Transaction
	snap, err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		if t, err = relation.Must[Transaction](tx, KindTransaction, "Transaction", id); err != nil {
			return err
		}
		if payer, ok := p.PayerID.Value(); ok {
			if err := relation.Ref[User](tx, KindUser, "Transaction", "payerID", payer); err != nil {
				return err
			}
		}
		if loc, ok := p.LocationID.Value(); ok {
			if err := relation.Ref[Location](tx, KindLocation, "Transaction", "locationID", loc); err != nil {
				return err
			}
		}
		p.Amount.Apply(&t.Amount)
		p.PayerID.Apply(&t.PayerID)
		p.Description.Apply(&t.Description)
		p.LocationID.Apply(&t.LocationID)
		t.Amount = aggregate.RoundCents(t.Amount)
		if err := validateAmount(id, t.Amount); err != nil {
			return err
		}
		return tx.Replace(KindTransaction, t)
	})
	if err != nil {
		return Transaction{}, nil, err
	}
	return t, snap, nil
}

func (s *service) DeleteTransaction(ctx context.Context, id string) (Transaction, *store.Snapshot, error) {
	var t Transaction
	snap, err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		if t, err = relation.Must[Transaction](tx, KindTransaction, "Transaction", id); err != nil {
			return err
		}
		tx.Remove(KindTransaction, id)
		return nil
	})
	if err != nil {
		return Transaction{}, nil, err
	}
	return t, snap, nil
}
