package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"ppe-monitor-go/internal/logging"
)

// SessionCookie carries the console session token.
const SessionCookie = "token"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrUnknownUser  = errors.New("unknown user")
)

// UserDirectory lists the accounts a session may belong to.
type UserDirectory interface {
	Users() map[string]string
}

type SessionClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// IssueToken signs a session for username valid for ttl.
func IssueToken(secret, username string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
		Username: username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates tokenStr and returns the username it was issued for.
func ParseToken(secret, tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || claims.Username == "" {
		return "", ErrInvalidToken
	}
	return claims.Username, nil
}

// RequireSession rejects requests without a valid session token for a user
// that still exists in users. The token is read from the session cookie or an
// Authorization bearer header.
func RequireSession(secret string, users UserDirectory) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, _ := c.Cookie(SessionCookie)
		if tokenStr == "" {
			if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				tokenStr = strings.TrimPrefix(auth, "Bearer ")
			}
		}
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		username, err := ParseToken(secret, tokenStr)
		if err == nil {
			if _, ok := users.Users()[username]; !ok {
				err = ErrUnknownUser
			}
		}
		if err != nil {
			logging.Warn(c).Err(err).Str("path", c.Request.URL.Path).Msg("Rejected console session")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(logging.CtxUsername, username)
		c.Next()
	}
}
