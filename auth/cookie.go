package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const RoomCookieName = "group_mix_room"

// RoomCookies carries the caller's room id in a signed cookie. Handlers read
// it and pass the value on explicitly; nothing is kept per process.
type RoomCookies struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewRoomCookies(secret []byte, ttl time.Duration, secure bool) *RoomCookies {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &RoomCookies{secret: secret, ttl: ttl, secure: secure}
}

func (c *RoomCookies) sign(roomID string, now time.Time) (string, time.Time, error) {
	expiry := now.Add(c.ttl)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"room": roomID,
		"iat":  now.Unix(),
		"exp":  expiry.Unix(),
	}).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiry, nil
}

func (c *RoomCookies) parse(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid room cookie")
	}
	roomID, ok := claims["room"].(string)
	if !ok {
		return "", fmt.Errorf("invalid room cookie")
	}
	return roomID, nil
}

// RoomID returns the room id from the request cookie, or "" when the cookie
// is missing, expired or forged.
func (c *RoomCookies) RoomID(r *http.Request) string {
	cookie, err := r.Cookie(RoomCookieName)
	if err != nil {
		return ""
	}
	roomID, err := c.parse(cookie.Value)
	if err != nil {
		return ""
	}
	return roomID
}

func (c *RoomCookies) SetRoomID(w http.ResponseWriter, roomID string) error {
	token, expiry, err := c.sign(roomID, time.Now())
	if err != nil {
		return fmt.Errorf("sign room cookie: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     RoomCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiry,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
