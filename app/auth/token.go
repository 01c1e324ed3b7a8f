package auth

import (
	"strings"
	"time"

	"postboard/app/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// GoogleIssuers are the iss values of Google sign-in id tokens.
var GoogleIssuers = []string{"accounts.google.com", "https://accounts.google.com"}

// Claims is the payload of a first-party token.
type Claims struct {
	Email  string `json:"email"`
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// TokenManager issues first-party tokens and resolves any accepted bearer
// token to a caller id without a remote call.
type TokenManager struct {
	secret  []byte
	ttl     time.Duration
	issuers map[string]struct{}
	now     func() time.Time
}

// NewTokenManager builds a TokenManager signing with secret. Tokens without
// an id claim are accepted only when their iss is in trustedIssuers.
func NewTokenManager(secret string, ttl time.Duration, trustedIssuers []string) *TokenManager {
	issuers := make(map[string]struct{}, len(trustedIssuers))
	for _, iss := range trustedIssuers {
		if iss = strings.TrimSpace(iss); iss != "" {
			issuers[iss] = struct{}{}
		}
	}
	return &TokenManager{
		secret:  []byte(secret),
		ttl:     ttl,
		issuers: issuers,
		now:     time.Now,
	}
}

// Issue signs a token carrying the user's email and id.
func (m *TokenManager) Issue(user *models.User) (string, error) {
	now := m.now()
	claims := Claims{
		Email:  user.Email,
		UserID: user.ID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

// Resolve returns the caller id carried by raw. A token with an id claim
// must be one of ours: signed with the shared secret and unexpired. Anything
// else is treated as a third-party identity token and yields its subject,
// qualified by issuer so it can never collide with a user id.
func (m *TokenManager) Resolve(raw string) (string, error) {
	if raw == "" {
		return "", ErrMissingToken
	}

	unverified := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, unverified); err != nil {
		return "", errors.Wrap(ErrInvalidToken, err.Error())
	}

	if _, ok := unverified["id"]; ok {
		return m.resolveFirstParty(raw)
	}
	return m.resolveThirdParty(unverified)
}

func (m *TokenManager) resolveFirstParty(raw string) (string, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return "", errors.Wrap(ErrInvalidToken, err.Error())
	}
	if claims.UserID == "" {
		return "", errors.Wrap(ErrInvalidToken, "empty id claim")
	}
	return claims.UserID, nil
}

func (m *TokenManager) resolveThirdParty(claims jwt.MapClaims) (string, error) {
	iss, err := claims.GetIssuer()
	if err != nil {
		return "", errors.Wrap(ErrInvalidToken, err.Error())
	}
	if _, trusted := m.issuers[iss]; !trusted {
		return "", errors.Wrapf(ErrInvalidToken, "untrusted issuer %q", iss)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return "", errors.Wrap(ErrInvalidToken, err.Error())
	}
	if exp != nil && !m.now().Before(exp.Time) {
		return "", errors.Wrap(ErrInvalidToken, "token is expired")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.Wrap(ErrInvalidToken, "missing subject")
	}
	return ExternalID(iss, sub), nil
}

// ExternalID is the caller id of a third-party identity. The issuer's scheme
// is dropped so both spellings of the same provider map to one caller.
func ExternalID(iss, sub string) string {
	return strings.TrimPrefix(iss, "https://") + "|" + sub
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" || strings.EqualFold(header, "Bearer") {
		return "", ErrMissingToken
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", errors.Wrap(ErrInvalidToken, "authorization scheme must be Bearer")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}
