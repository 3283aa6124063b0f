package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-key"

// mintToken creates a signed token expiring at the given time.
func mintToken(t *testing.T, secret string, expiresAt time.Time) string {
	t.Helper()

	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return signed
}

func TestDecode(t *testing.T) {
	expiresAt := time.Now().Add(time.Hour).Truncate(time.Second)
	token := mintToken(t, testSecret, expiresAt)

	sess, err := Decode(testSecret, token)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if sess.Token != token {
		t.Error("decoded session does not carry the raw token")
	}
	if sess.Expiry != expiresAt.Unix() {
		t.Errorf("expected expiry %d, got %d", expiresAt.Unix(), sess.Expiry)
	}
}

func TestDecodeWrongSecret(t *testing.T) {
	token := mintToken(t, "other-secret", time.Now().Add(time.Hour))

	sess, err := Decode(testSecret, token)
	if err == nil {
		t.Fatal("expected error for wrong secret")
	}
	// The raw token must survive a decode failure, with no expiry.
	if sess.Token != token {
		t.Error("expected raw token to be preserved on decode failure")
	}
	if sess.Expiry != 0 {
		t.Errorf("expected zero expiry on decode failure, got %d", sess.Expiry)
	}
}

func TestDecodeGarbage(t *testing.T) {
	sess, err := Decode(testSecret, "not-a-token")
	if err == nil {
		t.Fatal("expected error for malformed token")
	}
	if sess.Token != "not-a-token" {
		t.Error("expected raw token to be preserved on decode failure")
	}
}

func TestValidAt(t *testing.T) {
	expiry := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sess := Session{Token: "tok", Expiry: expiry.Unix()}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"well before expiry", expiry.Add(-time.Hour), true},
		{"one second before", expiry.Add(-time.Second), true},
		{"exactly at expiry", expiry, false},
		{"after expiry", expiry.Add(time.Second), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sess.ValidAt(tt.at); got != tt.want {
				t.Errorf("ValidAt(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestValidAtEmptyToken(t *testing.T) {
	sess := Session{Expiry: time.Now().Add(time.Hour).Unix()}
	if sess.ValidAt(time.Now()) {
		t.Error("session without a token must never be valid")
	}
}
