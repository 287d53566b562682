package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/argon2"
)

const (
	DefaultMinLength        = 8
	DefaultTime      uint32 = 1
	DefaultMemoryKiB uint32 = 64 * 1024
	DefaultThreads   uint8  = 4

	keyLen  uint32 = 32
	saltLen        = 16
)

var ErrTooShort = errors.New("password_too_short")

// Policy sets the minimum user password length and the argon2id cost used
// for new hashes. Existing hashes verify with the cost encoded in them.
type Policy struct {
	MinLength int
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
}

// NewPolicy fills zero fields with the defaults.
func NewPolicy(p Policy) Policy {
	if p.MinLength <= 0 {
		p.MinLength = DefaultMinLength
	}
	if p.Time == 0 {
		p.Time = DefaultTime
	}
	if p.MemoryKiB == 0 {
		p.MemoryKiB = DefaultMemoryKiB
	}
	if p.Threads == 0 {
		p.Threads = DefaultThreads
	}
	return p
}

// Validate counts runes after trimming surrounding whitespace.
func (p Policy) Validate(raw string) error {
	if utf8.RuneCountInString(strings.TrimSpace(raw)) < p.MinLength {
		return ErrTooShort
	}
	return nil
}

// Hash returns the PHC-encoded argon2id hash of raw.
func (p Policy) Hash(raw string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	sum := argon2.IDKey([]byte(raw), salt, p.Time, p.MemoryKiB, p.Threads, keyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.MemoryKiB, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	), nil
}

// Verify reports whether raw matches an encoded argon2id hash.
func Verify(raw, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" || parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return false
	}
	memory, timeCost, threads, ok := parseCost(parts[3])
	if !ok {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(want) == 0 {
		return false
	}
	got := argon2.IDKey([]byte(raw), salt, timeCost, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(want, got) == 1
}

// parseCost reads "m=..,t=..,p=..".
func parseCost(s string) (memory, timeCost uint32, threads uint8, ok bool) {
	fields := strings.Split(s, ",")
	if len(fields) != 3 {
		return 0, 0, 0, false
	}
	var vals [3]uint64
	for i, prefix := range []string{"m=", "t=", "p="} {
		raw, found := strings.CutPrefix(fields[i], prefix)
		if !found {
			return 0, 0, 0, false
		}
		bits := 32
		if prefix == "p=" {
			bits = 8
		}
		v, err := strconv.ParseUint(raw, 10, bits)
		if err != nil || v == 0 {
			return 0, 0, 0, false
		}
		vals[i] = v
	}
	return uint32(vals[0]), uint32(vals[1]), uint8(vals[2]), true
}
