package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wordbuddy/puzzle-server/internal/stats"
)

const (
	playerCookie = "tlw_player"
	playerTTL    = 180 * 24 * time.Hour
)

// playerClaims is the signed player handle. It identifies an installation,
// not an account.
type playerClaims struct {
	AnonID string `json:"anonId"`
	jwt.RegisteredClaims
}

// cookieJar signs and reads the player cookie.
type cookieJar struct {
	secret []byte
	secure bool
	now    func() time.Time
}

func (c cookieJar) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

// sign creates an HS256 token for anonID.
func (c cookieJar) sign(anonID string) (string, time.Time, error) {
	now := c.clock()
	exp := now.Add(playerTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, playerClaims{
		AnonID: anonID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	ss, err := t.SignedString(c.secret)
	return ss, exp, err
}

// player returns the anonymous id from a valid token, if any.
func (c cookieJar) player(r *http.Request) (string, bool) {
	tok := bearerOrCookie(r)
	if tok == "" {
		return "", false
	}
	var claims playerClaims
	t, err := jwt.ParseWithClaims(tok, &claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(c.clock))
	if err != nil || !t.Valid || !strings.HasPrefix(claims.AnonID, "tlw_anon_") {
		return "", false
	}
	return claims.AnonID, true
}

// issue mints a new anonymous player and sets its cookie.
func (c cookieJar) issue(w http.ResponseWriter) (string, error) {
	id := stats.NewAnonID()
	tok, exp, err := c.sign(id)
	if err != nil {
		return "", err
	}
	sameSite := http.SameSiteLaxMode
	if c.secure {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     playerCookie,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: sameSite,
		Expires:  exp,
	})
	return id, nil
}

// bearerOrCookie extracts a bearer token from the Authorization header or the player cookie.
func bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(playerCookie); err == nil {
		return c.Value
	}
	return ""
}
