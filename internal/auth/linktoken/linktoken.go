// Package linktoken issues the one-off tokens embedded in activation and
// password reset links. A token binds the user id, the current password
// hash, the activation flag and the issue time, so it stops validating as
// soon as any of them changes or the TTL elapses.
package linktoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/birracraft/internal/auth/domain"
	"github.com/smallbiznis/birracraft/internal/clock"
)

type Purpose string

const (
	PurposeActivation Purpose = "activation"
	PurposeReset      Purpose = "reset"
)

const digestChars = 32

var ErrMalformed = errors.New("malformed_token")

type Generator struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func New(secret string, ttl time.Duration, clk clock.Clock) *Generator {
	if clk == nil {
		clk = clock.New()
	}
	return &Generator{secret: []byte(secret), ttl: ttl, clock: clk}
}

// Make returns "<unix seconds base36>-<hex digest>".
func (g *Generator) Make(purpose Purpose, user domain.User) string {
	ts := g.clock.Now().Unix()
	return strconv.FormatInt(ts, 36) + "-" + g.digest(purpose, user, ts)
}

func (g *Generator) Check(purpose Purpose, user domain.User, token string) bool {
	tsPart, sig, ok := strings.Cut(strings.TrimSpace(token), "-")
	if !ok || tsPart == "" || sig == "" {
		return false
	}
	ts, err := strconv.ParseInt(tsPart, 36, 64)
	if err != nil {
		return false
	}
	if !hmac.Equal([]byte(sig), []byte(g.digest(purpose, user, ts))) {
		return false
	}
	issued := time.Unix(ts, 0)
	now := g.clock.Now()
	if g.ttl > 0 && now.Sub(issued) > g.ttl {
		return false
	}
	return !issued.After(now)
}

func (g *Generator) digest(purpose Purpose, user domain.User, ts int64) string {
	mac := hmac.New(sha256.New, g.secret)
	fmt.Fprintf(mac, "%s|%d|%s|%t|%d", purpose, user.ID, user.PasswordHash, user.IsActive, ts)
	return hex.EncodeToString(mac.Sum(nil))[:digestChars]
}

// EncodeUID encodes a link uid segment.
func EncodeUID(value string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(value))
}

func DecodeUID(value string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(strings.TrimSpace(value), "="))
	if err != nil || len(raw) == 0 {
		return "", ErrMalformed
	}
	return string(raw), nil
}
