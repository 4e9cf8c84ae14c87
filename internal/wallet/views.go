package wallet

import (
	"context"
	"time"

	"fixture-graph/internal/aggregate"
	"fixture-graph/internal/apperr"
	"fixture-graph/internal/facade"
	"fixture-graph/internal/relation"
	"fixture-graph/internal/store"
)

// scope is what every wallet view resolves against: the operation's
// session and the currency Currency.rate quotes into.
type scope struct {
	sess *facade.Session
	base string
}

func (sc *scope) at(snap *store.Snapshot) *scope {
	return &scope{sess: sc.sess.At(snap), base: sc.base}
}

func (sc *scope) snap() *store.Snapshot { return sc.sess.Snapshot }

type UserView struct {
	sc *scope
	u  User
}

func (v *UserView) Id() string        { return v.u.ID }
func (v *UserView) FirstName() string { return v.u.FirstName }
func (v *UserView) LastName() string  { return v.u.LastName }

func (v *UserView) Description() *string { return optional(v.u.Description) }

// Friends skips ids that no longer resolve.
func (v *UserView) Friends() []*UserView {
	out := make([]*UserView, 0, len(v.u.Friends))
	for _, id := range v.u.Friends {
		if f, ok := relation.Forward[User](v.sc.snap(), KindUser, id); ok {
			out = append(out, &UserView{sc: v.sc, u: f})
		}
	}
	return out
}

func (v *UserView) Wallets() []*WalletView {
	ws := relation.Indexed(v.sc.snap(), KindWallet, "user", v.u.ID, func(w Wallet) string { return w.UserID })
	out := make([]*WalletView, len(ws))
	for i, w := range ws {
		out[i] = &WalletView{sc: v.sc, w: w}
	}
	return out
}

type CurrencyView struct {
	sc *scope
	c  Currency
}

func (v *CurrencyView) Id() string           { return v.c.ID }
func (v *CurrencyView) Abbreviation() string { return v.c.Abbreviation }
func (v *CurrencyView) Symbol() string       { return v.c.Symbol }
func (v *CurrencyView) Country() string      { return v.c.Country }

// Rate quotes one unit of this currency in the base currency. A failed
// quote is null and reported as a fault of this field alone.
func (v *CurrencyView) Rate(ctx context.Context) *float64 {
	rate, err := v.rate(ctx)
	if err != nil {
		facade.Fault(ctx, err)
		return nil
	}
	return &rate
}

func (v *CurrencyView) rate(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	rate, err := v.sc.sess.Rates.Rate(ctx, v.c.Abbreviation, v.sc.base)
	if err != nil {
		if !apperr.IsTaxonomy(err) && ctx.Err() == nil {
			err = apperr.RateUnavailable(v.c.Abbreviation, v.sc.base, err)
		}
		return 0, err
	}
	return rate, nil
}

type LocationView struct {
	sc *scope
	l  Location
}

func (v *LocationView) Id() string   { return v.l.ID }
func (v *LocationView) Lat() float64 { return v.l.Lat }
func (v *LocationView) Lng() float64 { return v.l.Lng }
func (v *LocationView) Name() string { return v.l.Name }

type WalletView struct {
	sc *scope
	w  Wallet
}

func (v *WalletView) Id() string   { return v.w.ID }
func (v *WalletView) Name() string { return v.w.Name }

func (v *WalletView) User() *UserView {
	return userRef(v.sc, v.w.UserID)
}

func (v *WalletView) Currency() *CurrencyView {
	return currencyRef(v.sc, v.w.CurrencyID)
}

func (v *WalletView) transactions() []Transaction {
	return relation.Indexed(v.sc.snap(), KindTransaction, "wallet", v.w.ID, func(t Transaction) string { return t.WalletID })
}

func (v *WalletView) Transactions() []*TransactionView {
	txs := v.transactions()
	out := make([]*TransactionView, len(txs))
	for i, t := range txs {
		out[i] = &TransactionView{sc: v.sc, t: t}
	}
	return out
}

// Balance is recomputed on every read with the session's rates. Money the
// owner paid counts against the wallet, everything else for it. When a rate
// is missing the balance is null and the fault is reported beside the data.
func (v *WalletView) Balance(ctx context.Context) *float64 {
	b, err := v.balance(ctx)
	if err != nil {
		facade.Fault(ctx, err)
		return nil
	}
	return &b
}

func (v *WalletView) balance(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	cur, ok := relation.Forward[Currency](v.sc.snap(), KindCurrency, v.w.CurrencyID)
	if !ok {
		return 0, apperr.NotFound("Currency", v.w.CurrencyID)
	}

	txs := v.transactions()
	moves := make([]aggregate.Movement, 0, len(txs))
	for _, t := range txs {
		c, ok := relation.Forward[Currency](v.sc.snap(), KindCurrency, t.CurrencyID)
		if !ok {
			return 0, apperr.NotFound("Currency", t.CurrencyID)
		}
		moves = append(moves, aggregate.Movement{
			Amount:   t.Amount,
			Currency: c.Abbreviation,
			Outbound: t.PayerID == v.w.UserID,
		})
	}
	return aggregate.Balance(ctx, cur.Abbreviation, moves, v.sc.sess.Rates)
}

type TransactionView struct {
	sc *scope
	t  Transaction
}

func (v *TransactionView) Id() string        { return v.t.ID }
func (v *TransactionView) Amount() float64   { return v.t.Amount }
func (v *TransactionView) Rate() float64     { return v.t.Rate }
func (v *TransactionView) Timestamp() string { return v.t.Timestamp.Format(time.RFC3339) }

func (v *TransactionView) Description() *string { return optional(v.t.Description) }

func (v *TransactionView) Payer() *UserView {
	return userRef(v.sc, v.t.PayerID)
}

func (v *TransactionView) Wallet() *WalletView {
	w, ok := relation.Forward[Wallet](v.sc.snap(), KindWallet, v.t.WalletID)
	if !ok {
		return nil
	}
	return &WalletView{sc: v.sc, w: w}
}

func (v *TransactionView) Currency() *CurrencyView {
	return currencyRef(v.sc, v.t.CurrencyID)
}

// Location is optional; an unset id is null.
func (v *TransactionView) Location() *LocationView {
	l, ok := relation.Forward[Location](v.sc.snap(), KindLocation, v.t.LocationID)
	if !ok {
		return nil
	}
	return &LocationView{sc: v.sc, l: l}
}

// Forward links resolve to nil when the target id no longer exists.

func userRef(sc *scope, id string) *UserView {
	u, ok := relation.Forward[User](sc.snap(), KindUser, id)
	if !ok {
		return nil
	}
	return &UserView{sc: sc, u: u}
}

func currencyRef(sc *scope, id string) *CurrencyView {
	c, ok := relation.Forward[Currency](sc.snap(), KindCurrency, id)
	if !ok {
		return nil
	}
	return &CurrencyView{sc: sc, c: c}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func newUserView(sc *scope, u User) *UserView { return &UserView{sc: sc, u: u} }

func newCurrencyView(sc *scope, c Currency) *CurrencyView { return &CurrencyView{sc: sc, c: c} }

func newLocationView(sc *scope, l Location) *LocationView { return &LocationView{sc: sc, l: l} }

func newWalletView(sc *scope, w Wallet) *WalletView { return &WalletView{sc: sc, w: w} }

func newTransactionView(sc *scope, t Transaction) *TransactionView {
	return &TransactionView{sc: sc, t: t}
}
