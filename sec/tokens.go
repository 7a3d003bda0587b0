package sec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DownloadGrant is the payload sealed into a one-off download token.
// Existence of a valid grant = holder may fetch the named archive.
type DownloadGrant struct {
	ClientName string
	Archive    string
	ValidUntil int64 // Hardcap, unix seconds
}

func (g DownloadGrant) String() string {
	return fmt.Sprintf("%s:%s:%d", g.ClientName, g.Archive, g.ValidUntil)
}

// ParseDownloadGrant splits from the right since client names may contain ':'
// while archive names and timestamps never do.
func ParseDownloadGrant(s string) (*DownloadGrant, error) {
	tsIdx := strings.LastIndex(s, ":")
	if tsIdx < 0 {
		return nil, fmt.Errorf("invalid download grant format")
	}
	arcIdx := strings.LastIndex(s[:tsIdx], ":")
	if arcIdx < 0 {
		return nil, fmt.Errorf("invalid download grant format")
	}
	validUntil, err := strconv.ParseInt(s[tsIdx+1:], 10, 64)
	if err != nil {
		return nil, err
	}
	return &DownloadGrant{
		ClientName: s[:arcIdx],
		Archive:    s[arcIdx+1 : tsIdx],
		ValidUntil: validUntil,
	}, nil
}

var ErrGrantExpired = errors.New("download grant expired")

// SealDownloadGrant encrypts a grant into an opaque url-safe token
func SealDownloadGrant(cipher *XChaCha20Poly1305Cipher, grant DownloadGrant) (string, error) {
	return cipher.EncryptEncode([]byte(grant.String()))
}

// OpenDownloadGrant decrypts and checks a sealed token against the given clock
func OpenDownloadGrant(cipher *XChaCha20Poly1305Cipher, token string, now time.Time) (*DownloadGrant, error) {
	plaintext, err := cipher.DecodeDecrypt(token)
	if err != nil {
		return nil, err
	}
	grant, err := ParseDownloadGrant(string(plaintext))
	if err != nil {
		return nil, err
	}
	if now.Unix() > grant.ValidUntil {
		return nil, ErrGrantExpired
	}
	return grant, nil
}
