package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/yoklama-api/internal/models"
	appErrors "github.com/noah-isme/yoklama-api/pkg/errors"
)

// TokenVerifier turns a bearer token into claims.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*models.JWTClaims, error)
}

// JWTVerifier validates HS256 tokens signed with a shared secret.
type JWTVerifier struct {
	secret []byte
	issuer string
}

// NewJWTVerifier constructs a JWTVerifier. An empty issuer disables the issuer check.
func NewJWTVerifier(secret, issuer string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), issuer: issuer}
}

// Verify implements TokenVerifier.
func (v *JWTVerifier) Verify(ctx context.Context, tokenString string) (*models.JWTClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// Issue signs claims for ttl. Used by tooling and tests.
func (v *JWTVerifier) Issue(claims models.JWTClaims, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	if claims.Subject == "" {
		claims.Subject = claims.UserID
	}
	if v.issuer != "" {
		claims.Issuer = v.issuer
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

type firebaseTokenClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseVerifier validates Firebase Authentication ID tokens. The role comes
// from the "role" custom claim when set.
type FirebaseVerifier struct {
	client firebaseTokenClient
}

// NewFirebaseVerifier wraps a Firebase auth client.
func NewFirebaseVerifier(client firebaseTokenClient) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

// Verify implements TokenVerifier.
func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*models.JWTClaims, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}
	claims := &models.JWTClaims{
		UserID:   token.UID,
		Role:     models.UserRole(strings.ToUpper(claimString(token.Claims, "role"))),
		Email:    claimString(token.Claims, "email"),
		FullName: claimString(token.Claims, "name"),
	}
	claims.Subject = token.Subject
	claims.Issuer = token.Issuer
	claims.ExpiresAt = jwt.NewNumericDate(time.Unix(token.Expires, 0))
	claims.IssuedAt = jwt.NewNumericDate(time.Unix(token.IssuedAt, 0))
	if claims.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

func claimString(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
