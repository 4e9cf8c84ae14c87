package wallet

import (
	"context"

	"fixture-graph/internal/facade"
	"fixture-graph/internal/store"
)

// Operations is the wallet schema's root field set. base is the currency
// Currency.rate quotes into.
func Operations(svc Service, base string) []facade.Operation {
	in := func(sess *facade.Session) *scope { return &scope{sess: sess, base: base} }

	return []facade.Operation{
		// Queries
		{Name: "getUsers", Kind: facade.Query, Entity: "User", Handler: list(KindUser, in, newUserView)},
		{Name: "getUser", Kind: facade.Query, Entity: "User", Handler: byID(KindUser, "userID", in, newUserView)},
		{Name: "getCurrencies", Kind: facade.Query, Entity: "Currency", Handler: list(KindCurrency, in, newCurrencyView)},
		{Name: "getCurrency", Kind: facade.Query, Entity: "Currency", Handler: byID(KindCurrency, "currencyID", in, newCurrencyView)},
		{Name: "getLocations", Kind: facade.Query, Entity: "Location", Handler: list(KindLocation, in, newLocationView)},
		{Name: "getLocation", Kind: facade.Query, Entity: "Location", Handler: byID(KindLocation, "locationID", in, newLocationView)},
		{Name: "getWallets", Kind: facade.Query, Entity: "Wallet", Handler: list(KindWallet, in, newWalletView)},
		{Name: "getWallet", Kind: facade.Query, Entity: "Wallet", Handler: byID(KindWallet, "walletID", in, newWalletView)},
		{Name: "getTransactions", Kind: facade.Query, Entity: "Transaction", Handler: list(KindTransaction, in, newTransactionView)},
		{Name: "getTransaction", Kind: facade.Query, Entity: "Transaction", Handler: byID(KindTransaction, "transactionID", in, newTransactionView)},

		// Users
		{Name: "createUser", Kind: facade.Mutation, Entity: "User", Handler: func(ctx context.Context, sess *facade.Session, args facade.Args) (any, error) {
			var u UserInput
			var err error
			if u.FirstName, err = args.String("firstName"); err != nil {
				return nil, err
			}
			if u.LastName, err = args.String("lastName"); err != nil {
				return nil, err
			}
			if args.Has("description") {
				if u.Description, err = args.String("description"); err != nil {
					return nil, err
				}
			}
			v, snap, err := svc.CreateUser(ctx, u)
			if err != nil {
				return nil, err
			}
			return newUserView(in(sess).at(snap), v), nil
		}},
		{Name: "updateUser", Kind: facade.Mutation, Entity: "User", Handler: func(ctx context.Context, sess *facade.Session, args facade.Args) (any, error) {
			id, err := args.ID("userID")
			if err != nil {
				return nil, err
			}
			var p UserPatch
			if p.FirstName, err = args.OptString("firstName"); err != nil {
				return nil, err
			}
			if p.LastName, err = args.OptString("lastName"); err != nil {
				return nil, err
			}
			if p.Description, err = args.Clearable("description", "clearDescription"); err != nil {
				return nil, err
			}
			v, snap, err := svc.UpdateUser(ctx, id, p)
			if err != nil {
				return nil, err
			}
			return newUserView(in(sess).at(snap), v), nil
		}},
		{Name: "deleteUser", Kind: facade.Mutation, Entity: "User", Handler: remove(svc.DeleteUser, "userID", in, newUserView)},
		{Name: "addFriend", Kind: facade.Mutation, Entity: "User", Handler: friendship(svc.AddFriend, in)},
		{Name: "removeFriend", Kind: facade.Mutation, Entity: "User", Handler: friendship(svc.RemoveFriend, in)},

		// Currencies
		{Name: "createCurrency", Kind: facade.Mutation, Entity: "Currency", Handler: func(ctx context.Context, sess *facade.Session, args facade.Args) (any, error) {
			var c CurrencyInput
			var err error
			if c.Abbreviation, err = args.String("abbreviation"); err != nil {
				return nil, err
			}
			if c.Symbol, err = args.String("symbol"); err != nil {
				return nil, err
			}
			if c.Country, err = args.String("country"); err != nil {
				return nil, err
			}
			v, snap, err := svc.CreateCurrency(ctx, c)
			if err != nil {
				return nil, err
			}
			return newCurrencyView(in(sess).at(snap), v), nil
		}},
		{Name: "updateCurrency", Kind: facade.Mutation, Entity: "Currency", Handler: func(ctx context.Context, sess *facade.Session, args facade.Args) (any, error) {
			id, err := args.ID("currencyID")
			if err != nil {
				return nil, err
			}
			var p CurrencyPatch
			if p.Abbreviation, err = args.OptString("abbreviation"); err != nil {
				return nil, err
			}
			if p.Symbol, err = args.OptString("symbol"); err != nil {
				return nil, err
			}
			if p.Country, err = args.OptString("country"); err != nil {
				return nil, err
			}
			v, snap, err := svc.UpdateCurrency(ctx, id, p)
			if err != nil {
				return nil, err
			}
			return newCurrencyView(in(sess).at(snap), v), nil
		}},
		{Name: "deleteCurrency", Kind: facade.Mutation, Entity: "Currency", Handler: remove(svc.DeleteCurrency, "currencyID", in, newCurrencyView)},

		// Locations
		{Name: "createLocation", Kind: facade.Mutation, Entity: "Location", Handler: func(ctx context.Context, sess *facade.Session, args facade.Args) (any, error) {
			var l LocationInput
			var err error
			if l.Lat, err = args.Float("lat"); err != nil {
				return nil, err
			}
			if l.Lng, err = args.Float("lng"); err != nil {
				return nil, err
			}
			if l.Name, err = args.String("name"); err != nil {
				return nil, err
			}
			v, snap, err := svc.CreateLocation(ctx, l)
			if err != nil {
				return nil, err
			}
			return newLocationView(in(sess).at(snap), v), nil
		}},
		{Name: "updateLocation", Kind: facade.Mutation, Entity: "Location", Handler: func(ctx context.Context, sess *facade.Session, args facade.Args) (any, error) {
			id, err := args.ID("locationID")
			if err != nil {
				return nil, err
			}
			var p LocationPatch
			if p.Lat, err = args.OptFloat("lat"); err != nil {
				return nil, err
			}
			if p.Lng, err = args.OptFloat("lng"); err != nil {
				return nil, err
			}
			if p.Name, err = args.OptString("name"); err != nil {
				return nil, err
			}
			v, snap, err := svc.UpdateLocation(ctx, id, p)
			if err != nil {
				return nil, err
			}
			return newLocationView(in(sess).at(snap), v), nil
		}},
		{Name: "deleteLocation", Kind: facade.Mutation, Entity: "Location", Handler: remove(svc.DeleteLocation, "locationID", in, newLocationView)},

		// Wallets
		{Name: "createWallet", Kind: facade.Mutation, Entity: "Wallet", Handler: func(ctx context.Context, sess *facade.Session, args facade.Args) (any, error) {
			var w WalletInput
			var err error
			if w.Name, err = args.String("name"); err != nil {
				return nil, err
			}
			if w.CurrencyID, err = args.ID("currencyID"); err != nil {
				return nil, err
			}
			if w.UserID, err = args.ID("userID"); err != nil {
				return nil, err
			}
			v, snap, err := svc.CreateWallet(ctx, w)
			if err != nil {
				return nil, err
			}
			return newWalletView(in(sess).at(snap), v), nil
		}},
		{Name: "updateWallet", Kind: facade.Mutation, Entity: "Wallet", Handler: func(ctx context.Context, sess *facade.Session, args facade.Args) (any, error) {
			id, err := args.ID("walletID")
			if err != nil {
				return nil, err
			}
			var p WalletPatch
			if p.Name, err = args.OptString("name"); err != nil {
				return nil, err
			}
			v, snap, err := svc.UpdateWallet(ctx, id, p)
			if err != nil {
				return nil, err
			}
			return newWalletView(in(sess).at(snap), v), nil
		}},
		{Name: "deleteWallet", Kind: facade.Mutation, Entity: "Wallet", Handler: remove(svc.DeleteWallet, "walletID", in, newWalletView)},

		// Transactions
		{Name: "createTransaction", Kind: facade.Mutation, Entity: "Transaction", Handler: func(ctx context.Context, sess *facade.Session, args facade.Args) (any, error) {
			var t TransactionInput
			var err error
			if t.Amount, err = args.Float("amount"); err != nil {
				return nil, err
			}
			if t.PayerID, err = args.ID("payerID"); err != nil {
				return nil, err
			}
			if t.WalletID, err = args.ID("walletID"); err != nil {
				return nil, err
			}
			if t.CurrencyID, err = args.ID("currencyID"); err != nil {
				return nil, err
			}
			if args.Has("description") {
				if t.Description, err = args.String("description"); err != nil {
					return nil, err
				}
			}
			if args.Has("locationID") {
				if t.LocationID, err = args.ID("locationID"); err != nil {
					return nil, err
				}
			}
			v, snap, err := svc.CreateTransaction(ctx, t)
			if err != nil {
				return nil, err
			}
			return newTransactionView(in(sess).at(snap), v), nil
		}},
		{Name: "updateTransaction", Kind: facade.Mutation, Entity: "Transaction", Handler: func(ctx context.Context, sess *facade.Session, args facade.Args) (any, error) {
			id, err := args.ID("transactionID")
			if err != nil {
				return nil, err
			}
			var p TransactionPatch
			if p.Amount, err = args.OptFloat("amount"); err != nil {
				return nil, err
			}
			if p.PayerID, err = args.OptString("payerID"); err != nil {
				return nil, err
			}
			if p.Description, err = args.Clearable("description", "clearDescription"); err != nil {
				return nil, err
			}
			if p.LocationID, err = args.Clearable("locationID", "clearLocationID"); err != nil {
				return nil, err
			}
			v, snap, err := svc.UpdateTransaction(ctx, id, p)
			if err != nil {
				return nil, err
			}
			return newTransactionView(in(sess).at(snap), v), nil
		}},
		{Name: "deleteTransaction", Kind: facade.Mutation, Entity: "Transaction", Handler: remove(svc.DeleteTransaction, "transactionID", in, newTransactionView)},
	}
}

func list[T store.Entity, V any](kind store.Kind, in func(*facade.Session) *scope, newView func(*scope, T) *V) facade.Handler {
	return func(ctx context.Context, sess *facade.Session, args facade.Args) (any, error) {
		sc := in(sess)
		all := store.List[T](sess.Snapshot, kind)
		out := make([]*V, len(all))
		for i, e := range all {
			out[i] = newView(sc, e)
		}
		return out, nil
	}
}

// byID answers a lookup query. A miss is null, not an error.
func byID[T store.Entity, V any](kind store.Kind, arg string, in func(*facade.Session) *scope, newView func(*scope, T) *V) facade.Handler {
	return func(ctx context.Context, sess *facade.Session, args facade.Args) (any, error) {
		id, err := args.ID(arg)
		if err != nil {
			return nil, err
		}
		e, ok := store.Get[T](sess.Snapshot, kind, id)
		if !ok {
			return (*V)(nil), nil
		}
		return newView(in(sess), e), nil
	}
}

func remove[T any, V any](del func(context.Context, string) (T, *store.Snapshot, error), arg string, in func(*facade.Session) *scope, newView func(*scope, T) *V) facade.Handler {
	return func(ctx context.Context, sess *facade.Session, args facade.Args) (any, error) {
		id, err := args.ID(arg)
		if err != nil {
			return nil, err
		}
		v, snap, err := del(ctx, id)
		if err != nil {
			return nil, err
		}
		return newView(in(sess).at(snap), v), nil
	}
}

func friendship(fn func(ctx context.Context, userID, friendID string) (User, *store.Snapshot, error), in func(*facade.Session) *scope) facade.Handler {
	return func(ctx context.Context, sess *facade.Session, args facade.Args) (any, error) {
		userID, err := args.ID("userID")
		if err != nil {
			return nil, err
		}
		friendID, err := args.ID("friendID")
		if err != nil {
			return nil, err
		}
		u, snap, err := fn(ctx, userID, friendID)
		if err != nil {
			return nil, err
		}
		return newUserView(in(sess).at(snap), u), nil
	}
}
