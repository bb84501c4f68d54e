package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/murkotick/storefront-catalog/internal/cart"
	"github.com/murkotick/storefront-catalog/internal/client"
)

type stubProducts map[string]client.Product

func (s stubProducts) Get(_ context.Context, id string) (*client.Product, error) {
	p, ok := s[id]
	if !ok {
		return nil, &client.APIError{Status: 404, Type: "not_found", Message: "product not found"}
	}
	return &p, nil
}

func newSession(out *bytes.Buffer) *cartSession {
	return &cartSession{
		products: stubProducts{
			"p1": {ID: "p1", Name: "Runner", Price: json.Number("49.90"), Currency: "EUR"},
			"p2": {ID: "p2", Name: "Socks", Price: json.Number("5"), Currency: "EUR"},
		},
		cart: cart.New(),
		out:  out,
	}
}

func TestCartSession_AddShowQuit(t *testing.T) {
	var out bytes.Buffer
	s := newSession(&out)

	in := strings.NewReader("add p1 2\nadd p2\nshow\nquit\nadd p2\n")
	require.NoError(t, s.run(context.Background(), in))

	assert.Equal(t, 3, s.cart.ItemCount())
	assert.Equal(t, "104.8", s.cart.Total().String())
	assert.Contains(t, out.String(), "added 2 x Runner")
	assert.Contains(t, out.String(), "Socks")
}

func TestCartSession_Errors(t *testing.T) {
	var out bytes.Buffer
	s := newSession(&out)

	in := strings.NewReader("add missing\nadd p1 zero\nqty p2 3\nfly\n")
	require.NoError(t, s.run(context.Background(), in))

	assert.Zero(t, s.cart.ItemCount())
	text := out.String()
	assert.Contains(t, text, "no product with id missing")
	assert.Contains(t, text, "quantity must be a positive integer")
	assert.Contains(t, text, "p2 is not in the cart")
	assert.Contains(t, text, `unknown command "fly"`)
}

func TestCartSession_QtyRemoveClear(t *testing.T) {
	var out bytes.Buffer
	s := newSession(&out)

	in := strings.NewReader("add p1\nadd p2\nqty p1 4\nrm p2\n")
	require.NoError(t, s.run(context.Background(), in))
	assert.Equal(t, 4, s.cart.ItemCount())

	require.NoError(t, s.run(context.Background(), strings.NewReader("clear\nshow\n")))
	assert.Contains(t, out.String(), "cart is empty")
}

func TestParsePriceRange(t *testing.T) {
	var p client.ListParams
	require.NoError(t, parsePriceRange(&p, "10", "99.5"))
	require.NotNil(t, p.MinPrice)
	require.NotNil(t, p.MaxPrice)
	assert.Equal(t, "10", p.MinPrice.String())
	assert.Equal(t, "99.5", p.MaxPrice.String())

	assert.Error(t, parsePriceRange(&p, "cheap", ""))
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"list", "search", "latest", "featured", "get", "categories", "brands", "cart"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestGetCmd_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "missing", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	root := newRootCmd()
	root.SetArgs([]string{"--api-url", srv.URL, "get", "p404"})
	root.SetOut(&bytes.Buffer{})
	err := root.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Equal(t, "no product with id p404", err.Error())
}
