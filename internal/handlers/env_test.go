package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sweetslice/cakeshop/internal/models"
	"github.com/sweetslice/cakeshop/internal/session"
	"github.com/sweetslice/cakeshop/internal/store"
)

type testEnv struct {
	T        *testing.T
	E        *echo.Echo
	DB       *gorm.DB
	Store    *store.Store
	Sessions *session.Manager
	Cakes    *CakeHandler
	Cart     *CartHandler
	Orders   *OrderHandler
	Stats    *StatsHandler
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.Cake{}, &models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	st := store.New(db)
	sessions := session.NewManager([]byte("test_secret"), time.Hour)

	return &testEnv{
		T:        t,
		E:        echo.New(),
		DB:       db,
		Store:    st,
		Sessions: sessions,
		Cakes:    &CakeHandler{Store: st},
		Cart:     &CartHandler{Store: st, Sessions: sessions},
		Orders:   &OrderHandler{Store: st, Sessions: sessions},
		Stats:    &StatsHandler{Store: st},
	}
}

func (env *testEnv) doJSONRequest(method, path string, body interface{}, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

// sessionCookie pulls the cart session cookie out of a response so follow-up
// requests can stay in the same session.
func (env *testEnv) sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	env.T.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == session.CookieName {
			return ck
		}
	}
	env.T.Fatal("session cookie not set")
	return nil
}

func (env *testEnv) createCake(name string, price float64, stock int) models.Cake {
	env.T.Helper()
	cake := models.Cake{
		Name:        name,
		Description: "test_description",
		Price:       decimal.NewFromFloat(price),
		Category:    "test_category",
		ImageURL:    "https://example.com/cake.jpg",
		Stock:       stock,
	}
	require.NoError(env.T, env.DB.Create(&cake).Error)
	return cake
}

func requireHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError, got %v", err)
	require.Equal(t, code, he.Code)
}
