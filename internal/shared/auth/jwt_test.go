package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ENV", "dev")

	token, err := SignJWT(Claims{Sub: "user-1", Org: "acme"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := VerifyJWT(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Sub != "user-1" || claims.Org != "acme" || claims.Iss != Issuer {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestVerifyRejectsTamperingAndExpiry(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ENV", "dev")

	token, _ := SignJWT(Claims{Sub: "user-1"})
	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + ".AAAA"
	if _, err := VerifyJWT(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for bad signature, got %v", err)
	}

	expired, _ := SignJWT(Claims{Sub: "user-1", Exp: time.Now().Add(-time.Minute).Unix()})
	if _, err := VerifyJWT(expired); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}

	foreign, _ := SignJWT(Claims{Sub: "user-1", Iss: "someone-else"})
	if _, err := VerifyJWT(foreign); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign issuer, got %v", err)
	}
}

func TestSecretRequiredInProduction(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ENV", "production")
	if _, err := SignJWT(Claims{Sub: "x"}); err == nil {
		t.Fatalf("expected missing secret error")
	}
}

func TestVerifyRejectsOtherAlgorithmsAndFutureTokens(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ENV", "dev")

	token, _ := SignJWT(Claims{Sub: "user-1"})
	parts := strings.Split(token, ".")
	none := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	if _, err := VerifyJWT(none + "." + parts[1] + "." + parts[2]); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for alg none, got %v", err)
	}
	if _, err := VerifyJWT(token + ".extra"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for extra segment, got %v", err)
	}

	future, _ := SignJWT(Claims{Sub: "user-1", Nbf: time.Now().Add(time.Hour).Unix()})
	if _, err := VerifyJWT(future); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for not-yet-valid token, got %v", err)
	}

	skewed, _ := SignJWT(Claims{Sub: "user-1", Exp: time.Now().Add(-10 * time.Second).Unix()})
	if _, err := VerifyJWT(skewed); err != nil {
		t.Fatalf("expected small clock skew to be tolerated, got %v", err)
	}
}
