package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/amarshop/internal/config"
	"github.com/example/amarshop/internal/services"
	"github.com/example/amarshop/internal/session"
)

func withBackend(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		body, ok := routes[strings.TrimPrefix(r.URL.Path, "/api/v1")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"ok":false,"code":"NOT_FOUND"}`)
			return
		}
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	prevCfg, prevLogger := cfg, logger
	cfg = &config.Config{
		APIBaseURL:    srv.URL + "/api/v1",
		APITimeout:    2 * time.Second,
		SessionCookie: "amar_session",
		SessionTTL:    time.Hour,
	}
	logger = zap.NewNop()
	t.Cleanup(func() { cfg, logger = prevCfg, prevLogger })
	return srv
}

func TestRunInvoicePrintsReconciledLines(t *testing.T) {
	withBackend(t, map[string]string{
		"/orders/o1": `{"ok":true,"data":{"_id":"ffff0000aaaa1111","status":"PENDING",
			"customer":{"name":"Rahim","phone":"01712345678","district":"Dhaka"},
			"lines":[{"productId":"p1","qty":2,"price":100},{"productId":"p2","qty":1,"price":45.5}],
			"totals":{"subTotal":245.5,"shipping":60,"grandTotal":305.5}}}`,
		"/products/p1":                        `{"_id":"p1","title":"Oil","price":120}`,
		"/invoices/by-order/ffff0000aaaa1111": `{"ok":true,"data":{"_id":"i1","number":"INV-7","url":"https://files.example.com/7.pdf"}}`,
	})

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetOut(&out)

	require.NoError(t, runInvoice(cmd, []string{"o1"}))

	text := out.String()
	assert.Contains(t, text, "Invoice #aaaa1111  PENDING")
	assert.Contains(t, text, "Bill to: Rahim, 01712345678")
	assert.Contains(t, text, "Address: Dhaka")
	assert.Regexp(t, `Oil\s+2\s+৳120\s+৳240\s+live`, text)
	assert.Regexp(t, `Product\s+1\s+৳45\.50\s+৳45\.50\s+embedded`, text)
	assert.Contains(t, text, "Total:    ৳305.50")
	assert.Contains(t, text, "Official invoice: INV-7 https://files.example.com/7.pdf")
}

func TestRunInvoiceUnknownOrder(t *testing.T) {
	withBackend(t, map[string]string{})

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetOut(io.Discard)

	err := runInvoice(cmd, []string{"missing"})
	require.Error(t, err)
	assert.True(t, services.IsNotFound(err))
	assert.Contains(t, err.Error(), "fetch order missing")
}

func TestNewAppServesPages(t *testing.T) {
	withBackend(t, map[string]string{
		"/categories": `[{"_id":"c1","name":"Snacks","slug":"snacks"}]`,
	})
	api := services.NewClient(cfg.APIBaseURL, cfg.APITimeout, logger)
	app := newApp(cfg, api, session.NewMemoryBackend(), logger)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/categories", nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Snacks")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/no-such-page", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPurgeOnceDropsIdleMemorySessions(t *testing.T) {
	withBackend(t, map[string]string{})
	sessions := session.NewMemoryBackend()
	ctx := context.Background()
	require.NoError(t, sessions.Open("s1").Apply(ctx, map[string]string{session.KeyCart: "[]"}, nil))

	purgeOnce(ctx, sessions, time.Now())
	assert.NotEmpty(t, sessions.Snapshot("s1"))

	purgeOnce(ctx, sessions, time.Now().Add(cfg.SessionTTL+time.Minute))
	assert.Empty(t, sessions.Snapshot("s1"))
}
