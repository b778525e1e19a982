// Package httpapi exposes the registry's four capabilities over HTTP:
// register a currency, update a rate, subscribe to threshold alerts and
// convert an amount.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/go-kit/log"
	"github.com/google/uuid"

	rates "go-currency-rate-registry"
	"go-currency-rate-registry/alert"
	"go-currency-rate-registry/notify"
	"go-currency-rate-registry/registry"
)

// Server dependencies for HTTP Server functions
type Server struct {
	Service     registry.Service
	Broadcaster *notify.Broadcaster
	AlertWriter io.Writer
	Logger      log.Logger

	router http.ServeMux

	// lock synchronizes access to subs
	lock sync.Mutex

	// subs maps subscription ids handed to clients back to their handles
	subs map[uuid.UUID]notify.Subscription
}

// NewServer constructs a Server with its routes registered. Alert lines
// for HTTP-created subscriptions are written to alertWriter.
func NewServer(s registry.Service, b *notify.Broadcaster, alertWriter io.Writer, logger log.Logger) *Server {
	server := &Server{
		Service:     s,
		Broadcaster: b,
		AlertWriter: alertWriter,
		Logger:      logger,
		subs:        map[uuid.UUID]notify.Subscription{},
	}
	server.routes()
	return server
}

func (s *Server) routes() {
	s.router.Handle("/api/currencies", s.currencies())
	s.router.Handle("/api/rates", s.updateRate())
	s.router.Handle("/api/convert", s.convert())
	s.router.Handle("/api/subscriptions", s.subscriptions())
}

func (s *Server) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(rw, r)
}

// currencies produces an HTTP handler for registering (POST) and looking
// up (GET, ?code=) currencies
func (s *Server) currencies() http.HandlerFunc {

	// request for unmarshalling JSON requests posted by clients
	type request struct {
		Code rates.Code `json:"code"`
		Rate rates.Rate `json:"rate"`
		Kind rates.Kind `json:"kind"`
	}

	// response for marshalling JSON responses to return to clients
	type response struct {
		Code rates.Code `json:"code"`
		Rate rates.Rate `json:"rate"`
		Kind rates.Kind `json:"kind"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		rw.Header().Set("Content-Type", "application/json")

		switch r.Method {
		case http.MethodGet:
			code := rates.Code(r.URL.Query().Get("code"))
			c, err := s.Service.Currency(code)
			if err != nil {
				rw.WriteHeader(http.StatusNotFound)
				rw.Write([]byte(`{"error": "unknown currency"}`))
				return
			}
			enc := json.NewEncoder(rw)
			if err := enc.Encode(&response{Code: c.Code(), Rate: c.Rate(), Kind: c.Kind()}); err != nil {
				rw.WriteHeader(http.StatusInternalServerError)
				rw.Write([]byte(`{"error": "failed json encoding"}`))
				return
			}

		case http.MethodPost:
			var request request
			if err := decode(r.Body, &request); err != nil {
				rw.WriteHeader(http.StatusBadRequest)
				rw.Write([]byte(`{"error": "invalid json"}`))
				return
			}
			if request.Kind == "" {
				request.Kind = rates.Fiat
			}
			c, err := rates.New(request.Code, request.Rate, request.Kind)
			if err != nil {
				rw.WriteHeader(http.StatusBadRequest)
				rw.Write([]byte(`{"error": "invalid currency"}`))
				return
			}
			// marshal before the 201 header goes out, a late failure could
			// not change the status anymore
			body, err := json.Marshal(&response{Code: c.Code(), Rate: c.Rate(), Kind: c.Kind()})
			if err != nil {
				rw.WriteHeader(http.StatusInternalServerError)
				rw.Write([]byte(`{"error": "failed json encoding"}`))
				return
			}
			s.Service.Add(c)
			rw.WriteHeader(http.StatusCreated)
			rw.Write(body)

		default:
			rw.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

// updateRate produces an HTTP handler for rate updates
func (s *Server) updateRate() http.HandlerFunc {

	type request struct {
		Code rates.Code `json:"code"`
		Rate rates.Rate `json:"rate"`
	}

	type response struct {
		Code rates.Code `json:"code"`
		Rate rates.Rate `json:"rate"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		rw.Header().Set("Content-Type", "application/json")

		if r.Method != http.MethodPost {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var request request
		if err := decode(r.Body, &request); err != nil {
			rw.WriteHeader(http.StatusBadRequest)
			rw.Write([]byte(`{"error": "invalid json"}`))
			return
		}

		err := s.Service.UpdateRate(r.Context(), request.Code, request.Rate)
		switch {
		case errors.Is(err, rates.ErrNotFound):
			rw.WriteHeader(http.StatusNotFound)
			rw.Write([]byte(`{"error": "unknown currency"}`))
			return
		case errors.Is(err, rates.ErrInvalidRate):
			rw.WriteHeader(http.StatusBadRequest)
			rw.Write([]byte(`{"error": "invalid rate"}`))
			return
		case err != nil:
			rw.WriteHeader(http.StatusInternalServerError)
			rw.Write([]byte(`{"error": "failed update"}`))
			return
		}

		enc := json.NewEncoder(rw)
		if err := enc.Encode(&response{Code: request.Code, Rate: request.Rate}); err != nil {
			rw.WriteHeader(http.StatusInternalServerError)
			rw.Write([]byte(`{"error": "failed json encoding"}`))
			return
		}
	}
}

// convert produces an HTTP handler for currency conversions
func (s *Server) convert() http.HandlerFunc {

	type request struct {
		FromCurrency rates.Code   `json:"fromCurrency"`
		ToCurrency   rates.Code   `json:"toCurrency"`
		Amount       rates.Amount `json:"amount"`
	}

	type response struct {
		Amount   rates.Amount `json:"amount"`
		Original rates.Amount `json:"original"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		rw.Header().Set("Content-Type", "application/json")

		if r.Method != http.MethodPost {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var request request
		if err := decode(r.Body, &request); err != nil {
			rw.WriteHeader(http.StatusBadRequest)
			rw.Write([]byte(`{"error": "invalid json"}`))
			return
		}

		converted, err := s.Service.Convert(r.Context(), request.Amount, request.FromCurrency, request.ToCurrency)
		if errors.Is(err, rates.ErrNotFound) {
			rw.WriteHeader(http.StatusNotFound)
			rw.Write([]byte(`{"error": "unknown currency"}`))
			return
		}
		if err != nil {
			rw.WriteHeader(http.StatusBadRequest)
			rw.Write([]byte(`{"error": "failed conversion"}`))
			return
		}

		response := response{
			Amount:   converted,
			Original: request.Amount,
		}

		enc := json.NewEncoder(rw)
		if err := enc.Encode(&response); err != nil {
			rw.WriteHeader(http.StatusInternalServerError)
			rw.Write([]byte(`{"error": "failed json encoding"}`))
			return
		}
	}
}

// subscriptions produces an HTTP handler for creating (POST) and removing
// (DELETE, ?id=) threshold alert subscriptions
func (s *Server) subscriptions() http.HandlerFunc {

	type request struct {
		Code      rates.Code `json:"code"`
		Threshold rates.Rate `json:"threshold"`
	}

	type response struct {
		ID string `json:"id"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		rw.Header().Set("Content-Type", "application/json")

		switch r.Method {
		case http.MethodPost:
			var request request
			if err := decode(r.Body, &request); err != nil {
				rw.WriteHeader(http.StatusBadRequest)
				rw.Write([]byte(`{"error": "invalid json"}`))
				return
			}
			if request.Code == "" {
				rw.WriteHeader(http.StatusBadRequest)
				rw.Write([]byte(`{"error": "missing code"}`))
				return
			}

			watcher := alert.NewWatcher(request.Code, request.Threshold, s.AlertWriter, log.With(s.Logger, "watcher", request.Code))
			sub := s.Broadcaster.Register(watcher)

			s.lock.Lock()
			s.subs[sub.ID()] = sub
			s.lock.Unlock()

			body, err := json.Marshal(&response{ID: sub.ID().String()})
			if err != nil {
				rw.WriteHeader(http.StatusInternalServerError)
				rw.Write([]byte(`{"error": "failed json encoding"}`))
				return
			}
			rw.WriteHeader(http.StatusCreated)
			rw.Write(body)

		case http.MethodDelete:
			id, err := uuid.Parse(r.URL.Query().Get("id"))
			if err != nil {
				rw.WriteHeader(http.StatusBadRequest)
				rw.Write([]byte(`{"error": "invalid id"}`))
				return
			}

			s.lock.Lock()
			sub, ok := s.subs[id]
			delete(s.subs, id)
			s.lock.Unlock()

			// removal is idempotent, unknown ids are a no-op
			if ok {
				s.Broadcaster.Unregister(sub)
			}
			rw.WriteHeader(http.StatusNoContent)

		default:
			rw.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

// decode reads body fully and unmarshals it into v
func decode(body io.Reader, v interface{}) error {
	bytes, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, v)
}
