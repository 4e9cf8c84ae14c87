package graph

import (
	"context"

	"fixture-graph/internal/wallet"

	"zombiezen.com/go/graphql-server/graphql"
)

// walletRoot is both the Query and the Mutation object of the wallet schema.
type walletRoot struct {
	root
}

func (r *walletRoot) GetUser(ctx context.Context, args map[string]graphql.Value) (*wallet.UserView, error) {
	return call[*wallet.UserView](ctx, r.root, "getUser", args)
}

func (r *walletRoot) GetUsers(ctx context.Context, args map[string]graphql.Value) ([]*wallet.UserView, error) {
	return call[[]*wallet.UserView](ctx, r.root, "getUsers", args)
}

func (r *walletRoot) GetWallet(ctx context.Context, args map[string]graphql.Value) (*wallet.WalletView, error) {
	return call[*wallet.WalletView](ctx, r.root, "getWallet", args)
}

func (r *walletRoot) GetWallets(ctx context.Context, args map[string]graphql.Value) ([]*wallet.WalletView, error) {
	return call[[]*wallet.WalletView](ctx, r.root, "getWallets", args)
}

func (r *walletRoot) GetTransaction(ctx context.Context, args map[string]graphql.Value) (*wallet.TransactionView, error) {
	return call[*wallet.TransactionView](ctx, r.root, "getTransaction", args)
}

func (r *walletRoot) GetTransactions(ctx context.Context, args map[string]graphql.Value) ([]*wallet.TransactionView, error) {
	return call[[]*wallet.TransactionView](ctx, r.root, "getTransactions", args)
}

func (r *walletRoot) GetLocation(ctx context.Context, args map[string]graphql.Value) (*wallet.LocationView, error) {
	return call[*wallet.LocationView](ctx, r.root, "getLocation", args)
}

func (r *walletRoot) GetLocations(ctx context.Context, args map[string]graphql.Value) ([]*wallet.LocationView, error) {
	return call[[]*wallet.LocationView](ctx, r.root, "getLocations", args)
}

func (r *walletRoot) GetCurrency(ctx context.Context, args map[string]graphql.Value) (*wallet.CurrencyView, error) {
	return call[*wallet.CurrencyView](ctx, r.root, "getCurrency", args)
}

func (r *walletRoot) GetCurrencies(ctx context.Context, args map[string]graphql.Value) ([]*wallet.CurrencyView, error) {
	return call[[]*wallet.CurrencyView](ctx, r.root, "getCurrencies", args)
}

// Mutations run in document order, each against the state the previous one left.

func (r *walletRoot) CreateUser(ctx context.Context, args map[string]graphql.Value) (*wallet.UserView, error) {
	return call[*wallet.UserView](ctx, r.root, "createUser", args)
}

func (r *walletRoot) UpdateUser(ctx context.Context, args map[string]graphql.Value) (*wallet.UserView, error) {
	return call[*wallet.UserView](ctx, r.root, "updateUser", args)
}

func (r *walletRoot) DeleteUser(ctx context.Context, args map[string]graphql.Value) (*wallet.UserView, error) {
	return call[*wallet.UserView](ctx, r.root, "deleteUser", args)
}

func (r *walletRoot) AddFriend(ctx context.Context, args map[string]graphql.Value) (*wallet.UserView, error) {
	return call[*wallet.UserView](ctx, r.root, "addFriend", args)
}

func (r *walletRoot) RemoveFriend(ctx context.Context, args map[string]graphql.Value) (*wallet.UserView, error) {
	return call[*wallet.UserView](ctx, r.root, "removeFriend", args)
}

func (r *walletRoot) CreateWallet(ctx context.Context, args map[string]graphql.Value) (*wallet.WalletView, error) {
	return call[*wallet.WalletView](ctx, r.root, "createWallet", args)
}

func (r *walletRoot) UpdateWallet(ctx context.Context, args map[string]graphql.Value) (*wallet.WalletView, error) {
	return call[*wallet.WalletView](ctx, r.root, "updateWallet", args)
}

func (r *walletRoot) DeleteWallet(ctx context.Context, args map[string]graphql.Value) (*wallet.WalletView, error) {
	return call[*wallet.WalletView](ctx, r.root, "deleteWallet", args)
}

func (r *walletRoot) CreateTransaction(ctx context.Context, args map[string]graphql.Value) (*wallet.TransactionView, error) {
	return call[*wallet.TransactionView](ctx, r.root, "createTransaction", args)
}

func (r *walletRoot) UpdateTransaction(ctx context.Context, args map[string]graphql.Value) (*wallet.TransactionView, error) {
	return call[*wallet.TransactionView](ctx, r.root, "updateTransaction", args)
}

func (r *walletRoot) DeleteTransaction(ctx context.Context, args map[string]graphql.Value) (*wallet.TransactionView, error) {
	return call[*wallet.TransactionView](ctx, r.root, "deleteTransaction", args)
}

func (r *walletRoot) CreateLocation(ctx context.Context, args map[string]graphql.Value) (*wallet.LocationView, error) {
	return call[*wallet.LocationView](ctx, r.root, "createLocation", args)
}

func (r *walletRoot) UpdateLocation(ctx context.Context, args map[string]graphql.Value) (*wallet.LocationView, error) {
	return call[*wallet.LocationView](ctx, r.root, "updateLocation", args)
}

func (r *walletRoot) DeleteLocation(ctx context.Context, args map[string]graphql.Value) (*wallet.LocationView, error) {
	return call[*wallet.LocationView](ctx, r.root, "deleteLocation", args)
}

func (r *walletRoot) CreateCurrency(ctx context.Context, args map[string]graphql.Value) (*wallet.CurrencyView, error) {
	return call[*wallet.CurrencyView](ctx, r.root, "createCurrency", args)
}

func (r *walletRoot) UpdateCurrency(ctx context.Context, args map[string]graphql.Value) (*wallet.CurrencyView, error) {
	return call[*wallet.CurrencyView](ctx, r.root, "updateCurrency", args)
}

func (r *walletRoot) DeleteCurrency(ctx context.Context, args map[string]graphql.Value) (*wallet.CurrencyView, error) {
	return call[*wallet.CurrencyView](ctx, r.root, "deleteCurrency", args)
}
