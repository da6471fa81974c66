package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"quicket/internal/model"
)

// TokenTTL is how long an issued session token remains valid. There is no
// revocation: a token is good until it expires.
const TokenTTL = 24 * time.Hour

var (
	// ErrTokenExpired is returned for a well-formed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned for a malformed token or a bad signature.
	ErrTokenInvalid = errors.New("invalid token")
)

// Caller identifies the authenticated principal behind a request. It is
// produced by token verification and passed explicitly into every service
// operation rather than read from any ambient state.
type Caller struct {
	UserID string
	Role   model.Role
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool {
	return c.Role == model.RoleAdmin
}

// TokenManager issues and verifies HS256-signed session tokens.
type TokenManager struct {
	secret []byte
	now    func() time.Time
}

// NewTokenManager constructs a TokenManager with the given signing secret.
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret), now: time.Now}
}

// Issue signs a session token encoding the user's id and role.
func (m *TokenManager) Issue(userID string, role model.Role) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    string(role),
		"exp":     m.now().Add(TokenTTL).Unix(),
	})
	return token.SignedString(m.secret)
}

// Verify checks the token's signature and expiry and returns the caller
// it encodes. The role is trusted from the token for its whole lifetime;
// a role change takes effect at the next login.
func (m *TokenManager) Verify(tokenString string) (Caller, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Caller{}, ErrTokenExpired
		}
		return Caller{}, ErrTokenInvalid
	}
	if !parsed.Valid {
		return Caller{}, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Caller{}, ErrTokenInvalid
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return Caller{}, ErrTokenInvalid
	}
	roleStr, ok := claims["role"].(string)
	if !ok {
		return Caller{}, ErrTokenInvalid
	}
	role, err := model.ParseRole(roleStr)
	if err != nil {
		return Caller{}, ErrTokenInvalid
	}

	return Caller{UserID: userID, Role: role}, nil
}
