package wallet

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fixture-graph/internal/apperr"
	"fixture-graph/internal/patch"
	"fixture-graph/internal/rates"
	"fixture-graph/internal/store"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// USD is the pivot; one EUR buys two USD.
var testRates = rates.Table{"USD": 1, "EUR": 0.5}

type sourceFunc func(ctx context.Context, from, to string) (float64, error)

func (f sourceFunc) Rate(ctx context.Context, from, to string) (float64, error) {
	return f(ctx, from, to)
}

func newTestService(t *testing.T, src rates.Source) (Service, *store.Store) {
	t.Helper()
	st := store.New()
	n := 0
	svc := NewService(st, src,
		WithClock(func() time.Time { return fixedNow }),
		WithIDs(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	)
	return svc, st
}

type fixture struct {
	alice, bob User
	usd, eur   Currency
	wallet     Wallet
	cafe       Location
}

func seedFixture(t *testing.T, svc Service) fixture {
	t.Helper()
	ctx := context.Background()
	var f fixture
	var err error

	f.alice, _, err = svc.CreateUser(ctx, UserInput{FirstName: "Alice", LastName: "Liddell"})
	require.NoError(t, err)
	f.bob, _, err = svc.CreateUser(ctx, UserInput{FirstName: "Bob", LastName: "Builder", Description: "fixes things"})
	require.NoError(t, err)
	f.usd, _, err = svc.CreateCurrency(ctx, CurrencyInput{Abbreviation: "usd", Symbol: "$", Country: "US"})
	require.NoError(t, err)
	f.eur, _, err = svc.CreateCurrency(ctx, CurrencyInput{Abbreviation: "EUR", Symbol: "€", Country: "EU"})
	require.NoError(t, err)
	f.wallet, _, err = svc.CreateWallet(ctx, WalletInput{Name: "Main", UserID: f.alice.ID, CurrencyID: f.usd.ID})
	require.NoError(t, err)
	f.cafe, _, err = svc.CreateLocation(ctx, LocationInput{Lat: 48.85, Lng: 2.35, Name: "Cafe"})
	require.NoError(t, err)
	return f
}

func TestCreateTransactionStoresRate(t *testing.T) {
	svc, st := newTestService(t, testRates)
	f := seedFixture(t, svc)
	assert.Equal(t, "USD", f.usd.Abbreviation)

	tx, snap, err := svc.CreateTransaction(context.Background(), TransactionInput{
		Amount: 5, PayerID: f.bob.ID, WalletID: f.wallet.ID, CurrencyID: f.eur.ID, LocationID: f.cafe.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 2.0, tx.Rate)
	assert.Equal(t, fixedNow, tx.Timestamp)
	assert.Same(t, st.Snapshot(), snap)
}

func TestCreateTransactionRejections(t *testing.T) {
	svc, st := newTestService(t, testRates)
	f := seedFixture(t, svc)
	ctx := context.Background()

	tests := []struct {
		name string
		in   TransactionInput
		want error
	}{
		{"Zero amount", TransactionInput{Amount: 0, PayerID: f.bob.ID, WalletID: f.wallet.ID, CurrencyID: f.usd.ID}, apperr.ErrValidationFailed},
		{"Unknown payer", TransactionInput{Amount: 1, PayerID: "ghost", WalletID: f.wallet.ID, CurrencyID: f.usd.ID}, apperr.ErrValidationFailed},
		{"Unknown wallet", TransactionInput{Amount: 1, PayerID: f.bob.ID, WalletID: "ghost", CurrencyID: f.usd.ID}, apperr.ErrValidationFailed},
		{"Unknown location", TransactionInput{Amount: 1, PayerID: f.bob.ID, WalletID: f.wallet.ID, CurrencyID: f.usd.ID, LocationID: "ghost"}, apperr.ErrValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.CreateTransaction(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 0, st.Snapshot().Count(KindTransaction))
		})
	}
}

func TestCreateTransactionRateFailure(t *testing.T) {
	down := sourceFunc(func(ctx context.Context, from, to string) (float64, error) {
		return 0, errors.New("connection refused")
	})
	svc, st := newTestService(t, down)
	f := seedFixture(t, svc)

	_, _, err := svc.CreateTransaction(context.Background(), TransactionInput{
		Amount: 5, PayerID: f.bob.ID, WalletID: f.wallet.ID, CurrencyID: f.eur.ID,
	})
	assert.ErrorIs(t, err, apperr.ErrRateSourceUnavailable)
	assert.Equal(t, 0, st.Snapshot().Count(KindTransaction))
}

func TestUpdateTransactionClearsAndKeeps(t *testing.T) {
	svc, _ := newTestService(t, testRates)
	f := seedFixture(t, svc)
	ctx := context.Background()

	tx, _, err := svc.CreateTransaction(ctx, TransactionInput{
		Amount: 5, PayerID: f.bob.ID, WalletID: f.wallet.ID, CurrencyID: f.eur.ID,
		LocationID: f.cafe.ID, Description: "coffee",
	})
	require.NoError(t, err)

	tx, _, err = svc.UpdateTransaction(ctx, tx.ID, TransactionPatch{Amount: patch.Set(7.5)})
	require.NoError(t, err)
	assert.Equal(t, 7.5, tx.Amount)
	assert.Equal(t, 2.0, tx.Rate)
	assert.Equal(t, "coffee", tx.Description)
	assert.Equal(t, f.cafe.ID, tx.LocationID)

	tx, _, err = svc.UpdateTransaction(ctx, tx.ID, TransactionPatch{
		Description: patch.Clear[string](),
		LocationID:  patch.Clear[string](),
	})
	require.NoError(t, err)
	assert.Empty(t, tx.Description)
	assert.Empty(t, tx.LocationID)

	_, _, err = svc.UpdateTransaction(ctx, tx.ID, TransactionPatch{PayerID: patch.Set("ghost")})
	assert.ErrorIs(t, err, apperr.ErrValidationFailed)

	_, _, err = svc.UpdateTransaction(ctx, tx.ID, TransactionPatch{Amount: patch.Set(-1.0)})
	assert.ErrorIs(t, err, apperr.ErrValidationFailed)

	_, _, err = svc.UpdateTransaction(ctx, "ghost", TransactionPatch{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestFriends(t *testing.T) {
	svc, st := newTestService(t, nil)
	f := seedFixture(t, svc)
	ctx := context.Background()

	a, _, err := svc.AddFriend(ctx, f.alice.ID, f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{f.bob.ID}, a.Friends)

	b, _ := store.Get[User](st.Snapshot(), KindUser, f.bob.ID)
	assert.Equal(t, []string{f.alice.ID}, b.Friends)

	// Adding twice changes nothing.
	before := st.Snapshot()
	_, snap, err := svc.AddFriend(ctx, f.bob.ID, f.alice.ID)
	require.NoError(t, err)
	assert.Same(t, before, snap)

	_, _, err = svc.AddFriend(ctx, f.alice.ID, f.alice.ID)
	assert.ErrorIs(t, err, apperr.ErrValidationFailed)

	_, _, err = svc.AddFriend(ctx, f.alice.ID, "ghost")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, _, err = svc.DeleteUser(ctx, f.bob.ID)
	assert.ErrorIs(t, err, apperr.ErrHasDependents)
	assert.ErrorContains(t, err, "friends")

	_, _, err = svc.RemoveFriend(ctx, f.bob.ID, f.alice.ID)
	require.NoError(t, err)
	a, _ = store.Get[User](st.Snapshot(), KindUser, f.alice.ID)
	assert.Empty(t, a.Friends)

	_, _, err = svc.DeleteUser(ctx, f.bob.ID)
	require.NoError(t, err)
}

func TestDeleteRestrict(t *testing.T) {
	svc, st := newTestService(t, testRates)
	f := seedFixture(t, svc)
	ctx := context.Background()

	tx, _, err := svc.CreateTransaction(ctx, TransactionInput{
		Amount: 1, PayerID: f.bob.ID, WalletID: f.wallet.ID, CurrencyID: f.eur.ID, LocationID: f.cafe.ID,
	})
	require.NoError(t, err)

	checks := []struct {
		name string
		del  func() error
		dep  string
	}{
		{"User owning a wallet", func() error { _, _, err := svc.DeleteUser(ctx, f.alice.ID); return err }, "wallets"},
		{"User who paid", func() error { _, _, err := svc.DeleteUser(ctx, f.bob.ID); return err }, "paid transactions"},
		{"Wallet with transactions", func() error { _, _, err := svc.DeleteWallet(ctx, f.wallet.ID); return err }, "transactions"},
		{"Currency of a wallet", func() error { _, _, err := svc.DeleteCurrency(ctx, f.usd.ID); return err }, "wallets"},
		{"Currency of a transaction", func() error { _, _, err := svc.DeleteCurrency(ctx, f.eur.ID); return err }, "transactions"},
		{"Location of a transaction", func() error { _, _, err := svc.DeleteLocation(ctx, f.cafe.ID); return err }, "transactions"},
	}
	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			before := st.Snapshot()
			err := c.del()
			assert.ErrorIs(t, err, apperr.ErrHasDependents)
			assert.ErrorContains(t, err, c.dep)
			assert.Same(t, before, st.Snapshot())
		})
	}

	_, _, err = svc.DeleteTransaction(ctx, tx.ID)
	require.NoError(t, err)
	_, _, err = svc.DeleteWallet(ctx, f.wallet.ID)
	require.NoError(t, err)
	_, _, err = svc.DeleteUser(ctx, f.alice.ID)
	require.NoError(t, err)
	_, _, err = svc.DeleteCurrency(ctx, f.eur.ID)
	require.NoError(t, err)
	_, _, err = svc.DeleteLocation(ctx, f.cafe.ID)
	require.NoError(t, err)

	_, ok := st.Snapshot().Get(KindUser, f.alice.ID)
	assert.False(t, ok)
}

func TestCurrencyRules(t *testing.T) {
	svc, _ := newTestService(t, nil)
	f := seedFixture(t, svc)
	ctx := context.Background()

	_, _, err := svc.CreateCurrency(ctx, CurrencyInput{Abbreviation: "Usd", Symbol: "$"})
	assert.ErrorIs(t, err, apperr.ErrValidationFailed)
	assert.ErrorContains(t, err, "already used")

	_, _, err = svc.UpdateCurrency(ctx, f.eur.ID, CurrencyPatch{Abbreviation: patch.Set("usd")})
	assert.ErrorIs(t, err, apperr.ErrValidationFailed)

	c, _, err := svc.UpdateCurrency(ctx, f.eur.ID, CurrencyPatch{Symbol: patch.Set("EUR€")})
	require.NoError(t, err)
	assert.Equal(t, "EUR", c.Abbreviation)
	assert.Equal(t, "EUR€", c.Symbol)
}

func TestUserAndLocationPatches(t *testing.T) {
	svc, _ := newTestService(t, nil)
	f := seedFixture(t, svc)
	ctx := context.Background()

	u, _, err := svc.UpdateUser(ctx, f.bob.ID, UserPatch{FirstName: patch.Set("Robert")})
	require.NoError(t, err)
	assert.Equal(t, "Robert", u.FirstName)
	assert.Equal(t, "fixes things", u.Description)

	u, _, err = svc.UpdateUser(ctx, f.bob.ID, UserPatch{Description: patch.Clear[string]()})
	require.NoError(t, err)
	assert.Empty(t, u.Description)

	_, _, err = svc.UpdateUser(ctx, f.bob.ID, UserPatch{LastName: patch.Set(" ")})
	assert.ErrorIs(t, err, apperr.ErrValidationFailed)

	l, _, err := svc.UpdateLocation(ctx, f.cafe.ID, LocationPatch{Name: patch.Set("Bistro")})
	require.NoError(t, err)
	assert.Equal(t, 48.85, l.Lat)
	assert.Equal(t, "Bistro", l.Name)

	_, _, err = svc.UpdateLocation(ctx, f.cafe.ID, LocationPatch{Lat: patch.Set(91.0)})
	assert.ErrorIs(t, err, apperr.ErrValidationFailed)

	w, _, err := svc.UpdateWallet(ctx, f.wallet.ID, WalletPatch{Name: patch.Set("Savings")})
	require.NoError(t, err)
	assert.Equal(t, "Savings", w.Name)
	assert.Equal(t, f.usd.ID, w.CurrencyID)
}
