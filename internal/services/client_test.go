package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api/v1", 2*time.Second, nil)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestListCategoriesAcceptsEveryEnvelope(t *testing.T) {
	bodies := []string{
		`[{"_id":"c1","name":"Rice"},{"_id":"c2","name":"Oil"}]`,
		`{"items":[{"_id":"c1","name":"Rice"},{"_id":"c2","name":"Oil"}]}`,
		`{"ok":true,"data":[{"_id":"c1","name":"Rice"},{"_id":"c2","name":"Oil"}]}`,
		`{"ok":true,"data":{"items":[{"_id":"c1","name":"Rice"},{"_id":"c2","name":"Oil"}]}}`,
		`{"results":[{"_id":"c1","name":"Rice"},{"_id":"c2","name":"Oil"}]}`,
	}
	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/v1/categories", r.URL.Path)
				writeJSON(w, http.StatusOK, body)
			})
			cats, err := c.ListCategories(context.Background())
			require.NoError(t, err)
			require.Len(t, cats, 2)
			assert.Equal(t, "c1", cats[0].ID)
			assert.Equal(t, "Oil", cats[1].Name)
		})
	}
}

func TestListProductsSendsQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "acme", q.Get("brand"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "8", q.Get("limit"))
		assert.False(t, q.Has("search"))
		writeJSON(w, http.StatusOK, `{"ok":true,"data":[]}`)
	})
	products, err := c.ListProducts(context.Background(), ProductQuery{Brand: "acme", Page: 2, Limit: 8})
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestStatusErrorCarriesEnvelopeMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"ok":false,"message":"bad slug","code":"BAD_REQUEST"}`)
	})
	_, err := c.GetProduct(context.Background(), "x")

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Status)
	assert.Equal(t, "bad slug", se.Message)
	assert.Equal(t, "BAD_REQUEST", se.Code)
	assert.Equal(t, "Could not load product (400): bad slug", Message(err, "Could not load product"))
}

func TestEnvelopeErrorOnOkFalse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"ok":false,"code":"VALIDATION","errors":[{"field":"phone","message":"phone is invalid"}]}`)
	})
	err := c.UpdateProfile(context.Background(), "tok", ProfileUpdate{Name: "A"})

	var ee *EnvelopeError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "VALIDATION", ee.Code)
	assert.Equal(t, "phone is invalid", Message(err, "Update failed"))
}

func TestMissingDataIsMalformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"ok":true}`)
	})
	_, err := c.GetOrder(context.Background(), "o1")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second, nil)
	_, err := c.ListCategories(context.Background())
	assert.ErrorIs(t, err, ErrTransport)
	assert.Contains(t, Message(err, "x"), "Could not reach")
}

func TestCancelledContextIsNotTransportError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[]`)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListCategories(ctx)
	assert.True(t, IsCanceled(err))
	assert.False(t, errors.Is(err, ErrTransport))
}

func TestAuthorizationHeader(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{"ok":true,"data":{"name":"Rahim","phone":"01712345678","address":{"district":"Dhaka"}}}`)
	})
	p, err := c.GetProfile(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "Rahim", p.Name)
	assert.Equal(t, "Dhaka", p.Address.District)
}

func TestLoginRequiresTokenAndCustomer(t *testing.T) {
	var body atomic.Value
	body.Store(`{"ok":true,"data":{"accessToken":"tok","customer":{"_id":"u1","name":"A","email":"a@x.io"}}}`)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var creds Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "a@x.io", creds.Email)
		writeJSON(w, http.StatusOK, body.Load().(string))
	})

	auth, err := c.Login(context.Background(), Credentials{Email: "a@x.io", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "tok", auth.AccessToken)
	assert.Equal(t, "u1", auth.Customer.ID)

	body.Store(`{"ok":true,"data":{"customer":{"_id":"u1"}}}`)
	_, err = c.Login(context.Background(), Credentials{Email: "a@x.io", Password: "secret"})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestForgotPasswordReturnsMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/customers/auth/forgot-password", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"ok":true,"message":"Check your inbox"}`)
	})
	msg, err := c.ForgotPassword(context.Background(), "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, "Check your inbox", msg)
}

func TestIsUnauthorized(t *testing.T) {
	assert.True(t, IsUnauthorized(&StatusError{Status: http.StatusUnauthorized}))
	assert.True(t, IsUnauthorized(&EnvelopeError{Code: "TOKEN_EXPIRED"}))
	assert.False(t, IsUnauthorized(&StatusError{Status: http.StatusForbidden}))
	assert.False(t, IsUnauthorized(ErrTransport))
}
