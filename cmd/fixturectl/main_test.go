package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("RATES", "")
	t.Setenv("BASE_CURRENCY", "")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestQuerySeededFood(t *testing.T) {
	out, err := execute(t, "", "query", "--json", "food", `{ restaurants { name } }`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{"restaurants":[{"name":"Tasty Delights"},{"name":"Pizza Palace"}]}}`, out)
}

func TestQueryFromStdin(t *testing.T) {
	out, err := execute(t, `{ users { username } }`, "query", "--json", "--no-seed", "food")
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{"users":[]}}`, out)
}

func TestQueryVariables(t *testing.T) {
	out, err := execute(t, "", "query", "--json", "wallet",
		"-v", `{"id":"missing"}`,
		`query Q($id: ID!) { getWallet(walletID: $id) { name } }`,
	)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{"getWallet":null}}`, out)

	_, err = execute(t, "", "query", "wallet", "-v", "{", `{ getUsers { id } }`)
	assert.ErrorContains(t, err, "invalid variables JSON")
}

func TestQueryErrors(t *testing.T) {
	out, err := execute(t, "", "query", "--json", "food", `{ menuItems(restaurantId: "ghost") { id } }`)
	assert.ErrorContains(t, err, "1 error(s)")
	assert.Contains(t, out, "not found")

	_, err = execute(t, "", "query", "ledger", `{ x }`)
	assert.ErrorContains(t, err, "unknown domain")

	_, err = execute(t, "", "query", "food")
	assert.ErrorContains(t, err, "no query provided")
}

func TestSchema(t *testing.T) {
	out, err := execute(t, "", "schema", "wallet")
	require.NoError(t, err)
	assert.Contains(t, out, "type Wallet")
	assert.Contains(t, out, "balance: Float!")

	_, err = execute(t, "", "schema", "ledger")
	assert.Error(t, err)
}

func TestOps(t *testing.T) {
	out, err := execute(t, "", "ops", "food")
	require.NoError(t, err)
	assert.Contains(t, out, "createOrder")
	assert.Contains(t, out, "mutation")
	assert.Contains(t, out, "restaurants")
}
