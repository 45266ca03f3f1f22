package jwt

import (
	"errors"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

func TestCodecRoundTripKeepsKind(t *testing.T) {
	codec, err := NewCodec("secret", "HS256")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	token, err := codec.Generate("wa123", KindAPIKey, time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := codec.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "wa123" || claims.Kind() != KindAPIKey {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestCodecRejectsExpiredToken(t *testing.T) {
	codec, _ := NewCodec("secret", "HS256")
	token, err := codec.Generate("we1", KindAccess, -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := codec.Parse(token); !errors.Is(err, jwtlib.ErrTokenExpired) {
		t.Fatalf("expected expired error, got %v", err)
	}
}

func TestCodecRejectsForeignSecret(t *testing.T) {
	issuer, _ := NewCodec("one", "HS256")
	verifier, _ := NewCodec("two", "HS256")
	token, _ := issuer.Generate("we1", KindAccess, time.Hour)
	if _, err := verifier.Parse(token); err == nil {
		t.Fatalf("expected signature failure")
	}
}

func TestCodecRejectsMissingSubject(t *testing.T) {
	codec, _ := NewCodec("secret", "HS512")
	token, _ := codec.Generate("", KindAccess, time.Hour)
	if _, err := codec.Parse(token); !errors.Is(err, ErrMissingSubject) {
		t.Fatalf("expected missing subject, got %v", err)
	}
}

func TestClaimsKindDefaultsToAccess(t *testing.T) {
	if (Claims{}).Kind() != KindAccess {
		t.Fatalf("expected access default")
	}
}

func TestNewCodecRejectsAsymmetricAlgorithm(t *testing.T) {
	if _, err := NewCodec("secret", "RS256"); err == nil {
		t.Fatalf("expected RS256 to be rejected")
	}
}
