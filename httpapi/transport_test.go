package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"

	rates "go-currency-rate-registry"
	"go-currency-rate-registry/notify"
)

// mock implements registry.Service
type mock struct {
	t      *testing.T
	amount rates.Amount
	from   rates.Code
	to     rates.Code

	added   []*rates.Currency
	updated map[rates.Code]rates.Rate
}

func (m *mock) Add(c *rates.Currency) {
	m.added = append(m.added, c)
}

func (m *mock) Currency(code rates.Code) (*rates.Currency, error) {
	if code != "USD" {
		return nil, fmt.Errorf("lookup [%v]: %w", code, rates.ErrNotFound)
	}
	c, err := rates.New("USD", 1.0, rates.Fiat)
	assert.Nil(m.t, err)
	return c, nil
}

func (m *mock) UpdateRate(_ context.Context, code rates.Code, rate rates.Rate) error {
	if code == "XYZ" {
		return fmt.Errorf("update rate [%v]: %w", code, rates.ErrNotFound)
	}
	if rate <= 0 {
		return fmt.Errorf("update rate [%v]: %w", code, rates.ErrInvalidRate)
	}
	if m.updated == nil {
		m.updated = map[rates.Code]rates.Rate{}
	}
	m.updated[code] = rate
	return nil
}

func (m *mock) Convert(_ context.Context, amount rates.Amount, from, to rates.Code) (rates.Amount, error) {
	assert.Equal(m.t, m.amount, amount, "amount")
	assert.Equal(m.t, m.from, from, "from")
	assert.Equal(m.t, m.to, to, "to")
	return 52.5, nil
}

func newTestServer(t *testing.T, m *mock) (*Server, *notify.Broadcaster, *bytes.Buffer) {
	b := notify.New(log.NewNopLogger())
	var alerts bytes.Buffer
	return NewServer(m, b, &alerts, log.NewNopLogger()), b, &alerts
}

func TestServer_Convert(t *testing.T) {
	m := &mock{
		t:      t,
		amount: 50,
		from:   "USD",
		to:     "EUR",
	}
	server, _, _ := newTestServer(t, m)

	w := httptest.NewRecorder()
	msg := `{"fromCurrency":"USD", "toCurrency":"EUR","amount":50.0}`
	r := httptest.NewRequest("POST", "/api/convert", strings.NewReader(msg))

	server.ServeHTTP(w, r)

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, `{"amount":52.5,"original":50}`, strings.TrimSpace(w.Body.String()))
}

func TestServer_UpdateRate(t *testing.T) {
	m := &mock{t: t}
	server, _, _ := newTestServer(t, m)

	w := httptest.NewRecorder()
	msg := `{"code":"EUR","rate":1.05}`
	r := httptest.NewRequest("POST", "/api/rates", strings.NewReader(msg))

	server.ServeHTTP(w, r)

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, `{"code":"EUR","rate":1.05}`, strings.TrimSpace(w.Body.String()))
	assert.Equal(t, rates.Rate(1.05), m.updated["EUR"])
}

func TestServer_UpdateRate_UnknownCode(t *testing.T) {
	m := &mock{t: t}
	server, _, _ := newTestServer(t, m)

	w := httptest.NewRecorder()
	msg := `{"code":"XYZ","rate":2.0}`
	r := httptest.NewRequest("POST", "/api/rates", strings.NewReader(msg))

	server.ServeHTTP(w, r)

	assert.Equal(t, 404, w.Code)
}

func TestServer_UpdateRate_InvalidRate(t *testing.T) {
	m := &mock{t: t}
	server, _, _ := newTestServer(t, m)

	w := httptest.NewRecorder()
	msg := `{"code":"EUR","rate":-1.0}`
	r := httptest.NewRequest("POST", "/api/rates", strings.NewReader(msg))

	server.ServeHTTP(w, r)

	assert.Equal(t, 400, w.Code)
}

func TestServer_RegisterAndLookupCurrency(t *testing.T) {
	m := &mock{t: t}
	server, _, _ := newTestServer(t, m)

	w := httptest.NewRecorder()
	msg := `{"code":"BTC","rate":30000,"kind":"CRYPTO"}`
	r := httptest.NewRequest("POST", "/api/currencies", strings.NewReader(msg))

	server.ServeHTTP(w, r)

	assert.Equal(t, 201, w.Code)
	assert.Equal(t, `{"code":"BTC","rate":30000,"kind":"CRYPTO"}`, strings.TrimSpace(w.Body.String()))
	assert.Equal(t, 1, len(m.added))
	assert.Equal(t, rates.Code("BTC"), m.added[0].Code())
	assert.Equal(t, rates.Crypto, m.added[0].Kind())

	w = httptest.NewRecorder()
	r = httptest.NewRequest("GET", "/api/currencies?code=USD", nil)
	server.ServeHTTP(w, r)
	assert.Equal(t, 200, w.Code)

	w = httptest.NewRecorder()
	r = httptest.NewRequest("GET", "/api/currencies?code=NOPE", nil)
	server.ServeHTTP(w, r)
	assert.Equal(t, 404, w.Code)
}

func TestServer_RegisterCurrency_InvalidRate(t *testing.T) {
	m := &mock{t: t}
	server, _, _ := newTestServer(t, m)

	w := httptest.NewRecorder()
	msg := `{"code":"BTC","rate":-5}`
	r := httptest.NewRequest("POST", "/api/currencies", strings.NewReader(msg))

	server.ServeHTTP(w, r)

	assert.Equal(t, 400, w.Code)
	assert.Equal(t, 0, len(m.added))
}

func TestServer_Subscriptions(t *testing.T) {
	m := &mock{t: t}
	server, broadcaster, alerts := newTestServer(t, m)

	w := httptest.NewRecorder()
	msg := `{"code":"BTC","threshold":35000}`
	r := httptest.NewRequest("POST", "/api/subscriptions", strings.NewReader(msg))

	server.ServeHTTP(w, r)

	assert.Equal(t, 201, w.Code)
	assert.Equal(t, 1, broadcaster.Len())

	var created struct {
		ID string `json:"id"`
	}
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)

	broadcaster.Broadcast(rates.RateChange{Code: "BTC", Rate: 30000})
	assert.Empty(t, alerts.String())

	broadcaster.Broadcast(rates.RateChange{Code: "BTC", Rate: 45000})
	assert.True(t, strings.Contains(alerts.String(), "BTC"))

	w = httptest.NewRecorder()
	r = httptest.NewRequest("DELETE", "/api/subscriptions?id="+created.ID, nil)
	server.ServeHTTP(w, r)

	assert.Equal(t, 204, w.Code)
	assert.Equal(t, 0, broadcaster.Len())

	// deleting again is a no-op
	w = httptest.NewRecorder()
	r = httptest.NewRequest("DELETE", "/api/subscriptions?id="+created.ID, nil)
	server.ServeHTTP(w, r)
	assert.Equal(t, 204, w.Code)
}
