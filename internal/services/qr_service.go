package services

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"club-commerce/models"
)

// QRClaims is the plaintext carried inside a QR payload. Door staff
// scanners decrypt it back to look up and redeem the purchase.
type QRClaims struct {
	Type       string `json:"type"`
	PurchaseID string `json:"id"`
	ClubID     string `json:"club_id"`
}

// QRService seals purchase claims into opaque QR payloads. Payloads are
// encrypted, not merely signed, so a screenshot leaks nothing about the
// purchase it redeems.
type QRService struct {
	aead cipher.AEAD
}

// NewQRService builds the service from a 64-char hex key (32 bytes).
func NewQRService(hexKey string) (*QRService, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("qr: decode key: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("qr: key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("qr: init cipher: %w", err)
	}
	return &QRService{aead: aead}, nil
}

// Encode seals the purchase into a base64url payload of nonce||ciphertext.
func (s *QRService) Encode(p *models.Purchase) (string, error) {
	claims := QRClaims{
		Type:       string(p.Type),
		PurchaseID: p.ID,
		ClubID:     p.ClubID,
	}
	plain, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("qr: marshal claims: %w", err)
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("qr: nonce: %w", err)
	}

	sealed := s.aead.Seal(nonce, nonce, plain, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decode opens a payload produced by Encode.
func (s *QRService) Decode(payload string) (*QRClaims, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("qr: decode payload: %w", err)
	}
	if len(sealed) < s.aead.NonceSize() {
		return nil, fmt.Errorf("qr: payload too short")
	}

	nonce, ciphertext := sealed[:s.aead.NonceSize()], sealed[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("qr: open payload: %w", err)
	}

	var claims QRClaims
	if err := json.Unmarshal(plain, &claims); err != nil {
		return nil, fmt.Errorf("qr: unmarshal claims: %w", err)
	}
	return &claims, nil
}
