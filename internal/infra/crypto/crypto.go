// Package crypto seals the view tickets that authorize browser requests.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
)

const (
	// NonceSize is the size of the nonce for AES-GCM (12 bytes).
	NonceSize = 12
	// KeySize is the size of the AES-256 key (32 bytes).
	KeySize = 32
)

// ErrInvalidKey is returned when the sealing key is invalid.
var ErrInvalidKey = errors.New("invalid sync key: must be 32 bytes (64 hex characters)")

// claims is the sealed ticket content.
type claims struct {
	UserID  string `json:"u"`
	Expires int64  `json:"e"` // Unix seconds
}

// Ticketer issues AES-256-GCM sealed tickets binding a user id to an expiry.
// Tickets are URL-safe base64 and opaque to the browser.
type Ticketer struct {
	gcm   cipher.AEAD
	clock domain.Clock
	ttl   time.Duration
}

// Ensure Ticketer implements domain.Ticketer.
var _ domain.Ticketer = (*Ticketer)(nil)

// GenerateKey returns a random hex-encoded key.
func GenerateKey() (string, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}
	return hex.EncodeToString(key), nil
}

// NewTicketer creates a Ticketer with the given hex-encoded key.
// The key must be 64 hex characters (32 bytes). A nil clock uses the system clock.
func NewTicketer(hexKey string, ttl time.Duration, clock domain.Clock) (*Ticketer, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil || len(key) != KeySize {
		return nil, ErrInvalidKey
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	if clock == nil {
		clock = domain.RealClock{}
	}
	if ttl <= 0 {
		ttl = domain.DefaultTicketTTL
	}
	return &Ticketer{gcm: gcm, clock: clock, ttl: ttl}, nil
}

// Issue returns a ticket for userID valid for the configured TTL.
// Returns: base64url(nonce (12 bytes) + ciphertext + auth tag)
func (t *Ticketer) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("issue ticket: empty user id")
	}
	plaintext, err := json.Marshal(claims{
		UserID:  userID,
		Expires: t.clock.Now().Add(t.ttl).Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("marshal claims: %w", err)
	}

	// Generate random nonce
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := t.gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Verify returns the user a ticket was issued for.
// Every failure wraps domain.ErrInvalidTicket.
func (t *Ticketer) Verify(ticket string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(ticket)
	if err != nil {
		return "", fmt.Errorf("%w: not base64", domain.ErrInvalidTicket)
	}
	if len(raw) < NonceSize {
		return "", fmt.Errorf("%w: too short", domain.ErrInvalidTicket)
	}

	plaintext, err := t.gcm.Open(nil, raw[:NonceSize], raw[NonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: seal broken", domain.ErrInvalidTicket)
	}

	var c claims
	if err := json.Unmarshal(plaintext, &c); err != nil || c.UserID == "" {
		return "", fmt.Errorf("%w: bad claims", domain.ErrInvalidTicket)
	}
	if t.clock.Now().Unix() >= c.Expires {
		return "", fmt.Errorf("%w: expired", domain.ErrInvalidTicket)
	}
	return c.UserID, nil
}
