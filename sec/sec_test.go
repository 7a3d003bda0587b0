package sec

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func testCipher(t *testing.T) *XChaCha20Poly1305Cipher {
	t.Helper()
	key := bytes.Repeat([]byte{0x42}, 32)
	c, err := NewXChaCha20Poly1305CipherBase64(key)
	if err != nil {
		t.Fatalf("NewXChaCha20Poly1305CipherBase64: %v", err)
	}
	return c
}

func TestCipherRoundTrip(t *testing.T) {
	c := testCipher(t)
	plaintext := []byte("acme:batch_20260801.zip:1790000000")
	token, err := c.EncryptEncode(plaintext)
	if err != nil {
		t.Fatalf("EncryptEncode: %v", err)
	}
	got, err := c.DecodeDecrypt(token)
	if err != nil {
		t.Fatalf("DecodeDecrypt: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("round trip = %q, want %q", got, plaintext)
	}
}

func TestCipherRejectsTamperedToken(t *testing.T) {
	c := testCipher(t)
	token, err := c.EncryptEncode([]byte("payload"))
	if err != nil {
		t.Fatalf("EncryptEncode: %v", err)
	}
	tampered := "A" + token[1:]
	if tampered == token {
		tampered = "B" + token[1:]
	}
	if _, err := c.DecodeDecrypt(tampered); err == nil {
		t.Fatal("expected error for tampered token")
	}
}

func TestDownloadGrantSealOpen(t *testing.T) {
	c := testCipher(t)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	grant := DownloadGrant{
		ClientName: "acme:east", // names may contain separators
		Archive:    "batch_20260801.zip",
		ValidUntil: now.Add(time.Hour).Unix(),
	}
	token, err := SealDownloadGrant(c, grant)
	if err != nil {
		t.Fatalf("SealDownloadGrant: %v", err)
	}
	got, err := OpenDownloadGrant(c, token, now)
	if err != nil {
		t.Fatalf("OpenDownloadGrant: %v", err)
	}
	if *got != grant {
		t.Fatalf("grant = %+v, want %+v", got, grant)
	}

	_, err = OpenDownloadGrant(c, token, now.Add(2*time.Hour))
	if !errors.Is(err, ErrGrantExpired) {
		t.Fatalf("expired grant: err = %v, want ErrGrantExpired", err)
	}
}

func TestHMACSignedAPITokenRoundTrip(t *testing.T) {
	secret := []byte("unit-test-secret")
	signed, err := GenerateHMACSignedAPIToken("docforge", "ops", secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateHMACSignedAPIToken: %v", err)
	}
	parsed, err := ParseHMACSignedToken(signed, secret)
	if err != nil {
		t.Fatalf("ParseHMACSignedToken: %v", err)
	}
	claims, err := GetClaimsFromParsedJWTToken(parsed)
	if err != nil {
		t.Fatalf("GetClaimsFromParsedJWTToken: %v", err)
	}
	if claims["sub"] != "ops" {
		t.Fatalf("sub = %v, want ops", claims["sub"])
	}

	if _, err := ParseHMACSignedToken(signed, []byte("wrong-secret")); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi"},
		{"bearer abc", ""},
		{"Basic abc", ""},
		{"Bearer ", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ExtractBearerToken(tc.header); got != tc.want {
			t.Errorf("ExtractBearerToken(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}
