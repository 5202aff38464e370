package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"leadcapture_backend/internal/leap"
	"leadcapture_backend/platform/apperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type fakeRemote struct {
	connErr  error
	customer any
}

func (f *fakeRemote) TestConnection(context.Context) error { return f.connErr }

func (f *fakeRemote) GetCustomer(_ context.Context, id string) (any, error) {
	if f.customer == nil {
		return nil, apperr.NotFound("LEAP CRM Error: customer " + id + " not found")
	}
	return f.customer, nil
}

type fakeLookups struct {
	invalidated int
}

func (f *fakeLookups) Trades(context.Context) ([]leap.Trade, error) {
	return []leap.Trade{{ID: 105, Name: "Roofing"}}, nil
}

func (f *fakeLookups) Divisions(context.Context) ([]leap.Division, error) {
	return nil, apperr.Transient("LEAP CRM Error: Bad Gateway", nil)
}

func (f *fakeLookups) SalesReps(context.Context) ([]leap.SalesRep, error) { return nil, nil }

func (f *fakeLookups) Invalidate(context.Context) error {
	f.invalidated++
	return nil
}

func newRouter(remote Remote, lookups leap.Lookups) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	New(remote, lookups).RegisterRoutes(r.Group("/crm"))
	return r
}

func serve(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestTestConnectionMapsErrorKinds(t *testing.T) {
	remote := &fakeRemote{connErr: apperr.Configuration("LEAP CRM Error: Unauthorized")}
	r := newRouter(remote, &fakeLookups{})

	rec := serve(r, http.MethodGet, "/crm/test-connection")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	remote.connErr = nil
	rec = serve(r, http.MethodGet, "/crm/test-connection")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"connected":true}`, rec.Body.String())
}

func TestLookupRoutes(t *testing.T) {
	lookups := &fakeLookups{}
	r := newRouter(&fakeRemote{}, lookups)

	rec := serve(r, http.MethodGet, "/crm/trades")
	require.Equal(t, http.StatusOK, rec.Code)
	var trades []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trades))
	require.Len(t, trades, 1)
	require.Equal(t, "Roofing", trades[0]["name"])

	rec = serve(r, http.MethodGet, "/crm/divisions")
	require.Equal(t, http.StatusBadGateway, rec.Code)

	rec = serve(r, http.MethodPost, "/crm/lookups/refresh")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, 1, lookups.invalidated)
}

func TestGetCustomerNotFound(t *testing.T) {
	r := newRouter(&fakeRemote{}, &fakeLookups{})
	rec := serve(r, http.MethodGet, "/crm/customers/404")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
