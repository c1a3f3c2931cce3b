package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// DefaultTTL covers a full overnight monitoring shift.
const DefaultTTL = 12 * time.Hour

type Claims struct {
	OwnerID  string `json:"sub"`
	Email    string `json:"email"`
	ShopName string `json:"shop"`
	jwt.RegisteredClaims
}

// Manager issues and validates the dashboard session tokens. Single HS256
// key; the kid header is kept for future rotation.
type Manager struct {
	signingKey []byte
	ttl        time.Duration
}

func NewManager(signingKey string, ttl time.Duration) *Manager {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Manager{signingKey: []byte(signingKey), ttl: ttl}
}

func (m *Manager) Generate(ownerID, email, shopName string) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		OwnerID:  ownerID,
		Email:    email,
		ShopName: shopName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.New().String(), // jti, used for revocation
			Subject:   ownerID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = "v1"

	return token.SignedString(m.signingKey)
}

func (m *Manager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.signingKey, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// TTL reports the configured token lifetime (revocations use it as the
// blacklist retention).
func (m *Manager) TTL() time.Duration {
	return m.ttl
}
