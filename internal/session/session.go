package session

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sweetslice/cakeshop/internal/models"
)

const CookieName = "cart_session"

// Manager keeps one cart per client session. The session id travels in a
// signed cookie, the cart itself stays in memory and disappears when the
// session expires. Nothing here is ever written to the database.
type Manager struct {
	secret []byte
	ttl    time.Duration

	mu    sync.Mutex
	carts map[string]*cart
}

type cart struct {
	items     []models.CartItem
	expiresAt time.Time
}

func NewManager(secret []byte, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		secret: secret,
		ttl:    ttl,
		carts:  make(map[string]*cart),
	}
}

// Cart returns the session's cart, creating an empty one on first access.
func (m *Manager) Cart(c echo.Context) []models.CartItem {
	sid := m.sessionID(c)
	m.mu.Lock()
	defer m.mu.Unlock()
	return snapshot(m.lookup(sid).items)
}

// Add merges the quantity into an existing entry for the same cake, or
// appends the item, and returns the updated cart.
func (m *Manager) Add(c echo.Context, item models.CartItem) []models.CartItem {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	sid := m.sessionID(c)
	m.mu.Lock()
	defer m.mu.Unlock()
	ct := m.lookup(sid)
	for i := range ct.items {
		if ct.items[i].CakeID == item.CakeID {
			ct.items[i].Quantity += item.Quantity
			return snapshot(ct.items)
		}
	}
	ct.items = append(ct.items, item)
	return snapshot(ct.items)
}

// Remove drops every entry for the given cake id. Removing an absent id is a
// no-op.
func (m *Manager) Remove(c echo.Context, cakeID int) []models.CartItem {
	sid := m.sessionID(c)
	m.mu.Lock()
	defer m.mu.Unlock()
	ct := m.lookup(sid)
	kept := ct.items[:0]
	for _, it := range ct.items {
		if it.CakeID != cakeID {
			kept = append(kept, it)
		}
	}
	ct.items = kept
	return snapshot(ct.items)
}

func (m *Manager) Clear(c echo.Context) {
	sid := m.sessionID(c)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookup(sid).items = nil
}

// sessionID returns the id carried by the request cookie, minting a fresh one
// (and setting the cookie) when the cookie is missing, invalid or expired.
func (m *Manager) sessionID(c echo.Context) string {
	if ck, err := c.Cookie(CookieName); err == nil && ck.Value != "" {
		if sid, err := m.parseToken(ck.Value); err == nil {
			return sid
		}
	}

	sid := uuid.NewString()
	if token, err := m.signToken(sid); err == nil {
		c.SetCookie(&http.Cookie{
			Name:     CookieName,
			Value:    token,
			Path:     "/",
			Expires:  time.Now().Add(m.ttl),
			HttpOnly: true,
		})
	} else {
		c.Logger().Errorf("session token sign error: %v", err)
	}
	return sid
}

func (m *Manager) signToken(sid string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   sid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *Manager) parseToken(raw string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid session token: %w", err)
	}
	if !token.Valid {
		return "", errors.New("invalid session token")
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.New("missing subject claim")
	}
	return sub, nil
}

// lookup must be called with mu held. Expired carts are pruned lazily and the
// entry's deadline slides forward on every access.
func (m *Manager) lookup(sid string) *cart {
	now := time.Now()
	for id, ct := range m.carts {
		if now.After(ct.expiresAt) {
			delete(m.carts, id)
		}
	}
	ct, ok := m.carts[sid]
	if !ok {
		ct = &cart{}
		m.carts[sid] = ct
	}
	ct.expiresAt = now.Add(m.ttl)
	return ct
}

func snapshot(items []models.CartItem) []models.CartItem {
	out := make([]models.CartItem, len(items))
	copy(out, items)
	return out
}
