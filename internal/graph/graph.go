// Package graph serves the fixture schemas over HTTP. Root fields are thin
// wrappers that hand their arguments to a facade and return its views.
package graph

import (
	"context"
	"embed"
	"fmt"
	"net/http"

	"fixture-graph/internal/facade"

	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"zombiezen.com/go/graphql-server/graphql"
	"zombiezen.com/go/graphql-server/graphqlhttp"
)

//go:embed schema/*.graphql
var schemaFS embed.FS

const (
	Food   = "food"
	Wallet = "wallet"
)

// Source returns the SDL of domain.
func Source(domain string) (string, error) {
	b, err := schemaFS.ReadFile("schema/" + domain + ".graphql")
	if err != nil {
		return "", fmt.Errorf("graph: no schema for domain %q", domain)
	}
	return string(b), nil
}

// Load parses and validates the SDL of domain.
func Load(domain string) (*ast.Schema, error) {
	src, err := Source(domain)
	if err != nil {
		return nil, err
	}
	s, gerr := gqlparser.LoadSchema(&ast.Source{Name: domain + ".graphql", Input: src})
	if gerr != nil {
		return nil, fmt.Errorf("graph: %s schema: %w", domain, gerr)
	}
	return s, nil
}

// NewServer builds the executable server for the facade's domain. Every
// GraphQL operation gets its own facade session.
func NewServer(fc *facade.Facade) (*graphql.Server, error) {
	src, err := Source(fc.Domain())
	if err != nil {
		return nil, err
	}
	if _, err := Load(fc.Domain()); err != nil {
		return nil, err
	}
	schema, err := graphql.ParseSchema(src, nil)
	if err != nil {
		return nil, fmt.Errorf("graph: parse %s schema: %w", fc.Domain(), err)
	}

	switch fc.Domain() {
	case Food:
		begin := func(ctx context.Context) (*foodRoot, error) {
			return &foodRoot{root{fc: fc, sess: fc.Begin()}}, nil
		}
		return graphql.NewServer(schema, begin, begin)
	case Wallet:
		begin := func(ctx context.Context) (*walletRoot, error) {
			return &walletRoot{root{fc: fc, sess: fc.Begin()}}, nil
		}
		return graphql.NewServer(schema, begin, begin)
	default:
		return nil, fmt.Errorf("graph: no resolvers for domain %q", fc.Domain())
	}
}

// Execute runs req on srv. Nullable fields that failed resolve to null and
// their errors are appended to the response, so sibling fields and list
// elements keep their data.
func Execute(ctx context.Context, srv *graphql.Server, req graphql.Request) graphql.Response {
	ctx, faults := facade.WithFaults(ctx)
	resp := srv.Execute(ctx, req)
	for _, err := range faults.Errors() {
		resp.Errors = append(resp.Errors, &graphql.ResponseError{Message: err.Error()})
	}
	return resp
}

// Handler serves fc's schema as a GraphQL endpoint.
func Handler(fc *facade.Facade) (http.Handler, error) {
	srv, err := NewServer(fc)
	if err != nil {
		return nil, err
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := graphqlhttp.Parse(srv.Schema(), r)
		if err != nil {
			code := graphqlhttp.StatusCode(err)
			if code == http.StatusMethodNotAllowed {
				w.Header().Set("Allow", "GET, HEAD, POST")
			}
			http.Error(w, err.Error(), code)
			return
		}
		graphqlhttp.WriteResponse(w, Execute(r.Context(), srv, req))
	}), nil
}

// Playground serves the GraphQL IDE pointed at endpoint.
func Playground(domain, endpoint string) http.Handler {
	return playground.Handler("fixture-graph "+domain, endpoint)
}

type root struct {
	fc   *facade.Facade
	sess *facade.Session
}

// call runs the root field name and asserts its result into T. A nil result
// is the zero T, which the server writes as null.
func call[T any](ctx context.Context, r root, name string, args map[string]graphql.Value) (T, error) {
	var zero T
	res, err := r.fc.Execute(ctx, r.sess, name, facade.NewArgs(goArgs(args)))
	if err != nil || res == nil {
		return zero, err
	}
	v, ok := res.(T)
	if !ok {
		return zero, fmt.Errorf("graph: %s returned %T", name, res)
	}
	return v, nil
}

func goArgs(args map[string]graphql.Value) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = v.GoValue()
	}
	return out
}
