package credential

import (
	"errors"
	"strings"
)

const DefaultNamespace = "ATHENA-MUSEUM"

var ErrMalformedPayload = errors.New("malformed credential payload")

// Encode builds the scannable payload "<namespace>-<bookingID>-<hash>".
func Encode(namespace string, bookingID string, hash string) string {
	return namespace + "-" + bookingID + "-" + hash
}

// Decode recovers the booking id and hash from a payload produced by Encode.
// The namespace may itself contain dashes; the booking id and hash may not.
func Decode(namespace string, payload string) (string, string, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(payload), namespace+"-")
	if !ok {
		return "", "", ErrMalformedPayload
	}
	i := strings.LastIndex(rest, "-")
	if i <= 0 || i == len(rest)-1 {
		return "", "", ErrMalformedPayload
	}
	bookingID, hash := rest[:i], rest[i+1:]
	if strings.Contains(bookingID, "-") {
		return "", "", ErrMalformedPayload
	}
	return bookingID, hash, nil
}
