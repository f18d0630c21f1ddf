package workflow

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

const totpInterval = 30

// TOTPCode derives the 6-digit time-based one-time password for the given
// base32 shared secret at time t.
func TOTPCode(secret string, t time.Time) (string, error) {
	cleaned := strings.ToUpper(strings.ReplaceAll(secret, " ", ""))
	if cleaned == "" {
		return "", fmt.Errorf("totp: empty secret")
	}
	if pad := len(cleaned) % 8; pad != 0 {
		cleaned += strings.Repeat("=", 8-pad)
	}

	key, err := base32.StdEncoding.DecodeString(cleaned)
	if err != nil {
		return "", fmt.Errorf("totp: decode secret: %w", err)
	}

	counter := uint64(t.Unix()) / totpInterval
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(sha1.New, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	code := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff
	return fmt.Sprintf("%06d", code%1000000), nil
}
