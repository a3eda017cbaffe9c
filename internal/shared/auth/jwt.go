package auth

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Issuer is stamped on every token this service signs.
const Issuer = "governance-api"

const (
	defaultTTL = 12 * time.Hour
	clockSkew  = 30 * time.Second
)

// Claims represents the identity contained in a JWT. Org scopes project score history.
type Claims struct {
	Sub   string `json:"sub"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Org   string `json:"org,omitempty"`
	Iss   string `json:"iss,omitempty"`
	Exp   int64  `json:"exp,omitempty"`
	Nbf   int64  `json:"nbf,omitempty"`
	Iat   int64  `json:"iat,omitempty"`
}

type header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ,omitempty"`
}

var (
	errMissingSecret = errors.New("jwt secret not configured")
	ErrInvalidToken  = errors.New("invalid token")
)

// hs256Header is the encoded header of every token SignJWT produces.
var hs256Header = mustEncode(header{Alg: "HS256", Typ: "JWT"})

// SignJWT signs the claims with HS256, filling iat, exp and iss when unset.
func SignJWT(claims Claims) (string, error) {
	secret, err := secretKey()
	if err != nil {
		return "", err
	}
	if claims.Sub == "" {
		return "", errors.New("sub is required")
	}

	now := time.Now().UTC()
	if claims.Iat == 0 {
		claims.Iat = now.Unix()
	}
	if claims.Exp == 0 {
		claims.Exp = now.Add(defaultTTL).Unix()
	}
	if claims.Iss == "" {
		claims.Iss = Issuer
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	unsigned := hs256Header + "." + base64.RawURLEncoding.EncodeToString(payload)
	return unsigned + "." + base64.RawURLEncoding.EncodeToString(mac(unsigned, secret)), nil
}

// VerifyJWT checks an HS256 token's signature, issuer and time window and returns its claims.
func VerifyJWT(token string) (Claims, error) {
	secret, err := secretKey()
	if err != nil {
		return Claims{}, err
	}

	headB64, rest, ok := strings.Cut(token, ".")
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	payloadB64, sigB64, ok := strings.Cut(rest, ".")
	if !ok || strings.Contains(sigB64, ".") {
		return Claims{}, ErrInvalidToken
	}

	var h header
	if err := decodeSegment(headB64, &h); err != nil || h.Alg != "HS256" {
		return Claims{}, ErrInvalidToken
	}
	sig, err := base64.RawURLEncoding.DecodeString(sigB64)
	if err != nil || !hmac.Equal(sig, mac(headB64+"."+payloadB64, secret)) {
		return Claims{}, ErrInvalidToken
	}

	var claims Claims
	if err := decodeSegment(payloadB64, &claims); err != nil {
		return Claims{}, ErrInvalidToken
	}
	if err := claims.validate(time.Now().UTC()); err != nil {
		return Claims{}, err
	}
	return claims, nil
}

func (c Claims) validate(now time.Time) error {
	switch {
	case c.Sub == "":
		return fmt.Errorf("%w: missing subject", ErrInvalidToken)
	case c.Iss != "" && c.Iss != Issuer:
		return fmt.Errorf("%w: unexpected issuer", ErrInvalidToken)
	case c.Exp > 0 && now.Add(-clockSkew).Unix() > c.Exp:
		return fmt.Errorf("%w: expired", ErrInvalidToken)
	case c.Nbf > 0 && now.Add(clockSkew).Unix() < c.Nbf:
		return fmt.Errorf("%w: not yet valid", ErrInvalidToken)
	}
	return nil
}

func decodeSegment(seg string, v any) error {
	raw, err := base64.RawURLEncoding.DecodeString(seg)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	return dec.Decode(v)
}

func mac(input string, secret []byte) []byte {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(input))
	return h.Sum(nil)
}

func mustEncode(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

func secretKey() ([]byte, error) {
	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret != "" {
		return []byte(secret), nil
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ENV"))) {
	case "production", "prod":
		return nil, fmt.Errorf("%w: JWT_SECRET required in production", errMissingSecret)
	}
	return []byte("dev-secret"), nil
}
