// Package wallet is the user wallet domain: users and their friends,
// wallets in some currency, and the transactions paid into them.
package wallet

import (
	"time"

	"fixture-graph/internal/store"
)

const (
	KindUser        store.Kind = "wallet.user"
	KindCurrency    store.Kind = "wallet.currency"
	KindLocation    store.Kind = "wallet.location"
	KindWallet      store.Kind = "wallet.wallet"
	KindTransaction store.Kind = "wallet.transaction"
)

type User struct {
	ID          string   `json:"id"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	Description string   `json:"description,omitempty"`
	Friends     []string `json:"friends,omitempty"`
}

func (u User) EntityID() string { return u.ID }

func (u User) friendIDs() []string { return u.Friends }

func (u User) hasFriend(id string) bool {
	for _, f := range u.Friends {
		if f == id {
			return true
		}
	}
	return false
}

// Currency is reference data. Rates are looked up by Abbreviation.
type Currency struct {
	ID           string `json:"id"`
	Abbreviation string `json:"abbreviation"`
	Symbol       string `json:"symbol"`
	Country      string `json:"country"`
}

func (c Currency) EntityID() string { return c.ID }

type Location struct {
	ID   string  `json:"id"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Name string  `json:"name"`
}

func (l Location) EntityID() string { return l.ID }

type Wallet struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	UserID     string `json:"userId"`
	CurrencyID string `json:"currencyId"`
}

func (w Wallet) EntityID() string { return w.ID }

// Transaction records the rate into the wallet's currency at the moment it
// was created. Balances use live rates instead.
type Transaction struct {
	ID          string    `json:"id"`
	Amount      float64   `json:"amount"`
	Rate        float64   `json:"rate"`
	PayerID     string    `json:"payerId"`
	WalletID    string    `json:"walletId"`
	CurrencyID  string    `json:"currencyId"`
	LocationID  string    `json:"locationId,omitempty"`
	Description string    `json:"description,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

func (t Transaction) EntityID() string { return t.ID }

func Register(c store.Codec) {
	store.Register[User](c, KindUser)
	store.Register[Currency](c, KindCurrency)
	store.Register[Location](c, KindLocation)
	store.Register[Wallet](c, KindWallet)
	store.Register[Transaction](c, KindTransaction)
}

type UserInput struct {
	FirstName   string
	LastName    string
	Description string
}

type CurrencyInput struct {
	Abbreviation string
	Symbol       string
	Country      string
}

type LocationInput struct {
	Lat  float64
	Lng  float64
	Name string
}

type WalletInput struct {
	Name       string
	UserID     string
	CurrencyID string
}

type TransactionInput struct {
	Amount      float64
	PayerID     string
	WalletID    string
	CurrencyID  string
	LocationID  string
	Description string
}
