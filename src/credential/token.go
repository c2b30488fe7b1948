// Package credential issues and encodes the entry credential of a completed
// booking: a public booking id plus a short verification hash.
package credential

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"log"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBookingIDPrefix = "ATH"
	DefaultHashLength      = 8
	suffixDigits           = 8
)

var suffixMax = big.NewInt(100_000_000)

type Generator struct {
	prefix     string
	hashLength int
	secret     []byte
	random     io.Reader
}

type GeneratorOption func(*Generator)

// WithPrefix sets the booking id prefix. Prefixes containing dashes or
// whitespace would make the encoded credential ambiguous and are ignored.
func WithPrefix(prefix string) GeneratorOption {
	return func(g *Generator) {
		if prefix == "" || strings.ContainsAny(prefix, "- \t\r\n") {
			log.Printf("[credential] Ignoring booking id prefix %q, using %s\n", prefix, g.prefix)
			return
		}
		g.prefix = prefix
	}
}

// WithHashLength sets the number of hex characters kept from the digest.
// Values below DefaultHashLength are ignored.
func WithHashLength(n int) GeneratorOption {
	return func(g *Generator) {
		if n >= DefaultHashLength && n <= sha256.Size*2 {
			g.hashLength = n
		}
	}
}

// WithSecret keys the verification hash with HMAC-SHA256.
func WithSecret(secret string) GeneratorOption {
	return func(g *Generator) {
		if secret != "" {
			g.secret = []byte(secret)
		}
	}
}

func WithRandom(r io.Reader) GeneratorOption {
	return func(g *Generator) {
		g.random = r
	}
}

func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		prefix:     DefaultBookingIDPrefix,
		hashLength: DefaultHashLength,
		random:     rand.Reader,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate mints a booking id and its verification hash.
func (g *Generator) Generate(identity string, now time.Time) (string, string, error) {
	bookingID, err := g.BookingID(now)
	if err != nil {
		return "", "", err
	}
	return bookingID, g.Hash(bookingID, identity, now), nil
}

// BookingID returns <prefix><YYYYMMDD><8 random digits>.
func (g *Generator) BookingID(now time.Time) (string, error) {
	n, err := rand.Int(g.random, suffixMax)
	if err != nil {
		return "", fmt.Errorf("could not generate booking id: %w", err)
	}
	return fmt.Sprintf("%s%s%0*d", g.prefix, now.Format("20060102"), suffixDigits, n.Int64()), nil
}

// Hash is deterministic for a given (bookingID, identity, now).
func (g *Generator) Hash(bookingID string, identity string, now time.Time) string {
	var h hash.Hash
	if g.secret != nil {
		h = hmac.New(sha256.New, g.secret)
	} else {
		h = sha256.New()
	}
	h.Write([]byte(bookingID))
	h.Write([]byte{'|'})
	h.Write([]byte(identity))
	h.Write([]byte{'|'})
	h.Write([]byte(strconv.FormatInt(now.UnixNano(), 10)))
	sum := hex.EncodeToString(h.Sum(nil))
	return strings.ToUpper(sum[:g.hashLength])
}

func (g *Generator) HashLength() int {
	return g.hashLength
}
