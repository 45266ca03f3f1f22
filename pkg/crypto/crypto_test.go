package crypto

import "testing"

func TestSealerRoundTrip(t *testing.T) {
	s := NewSealer("secret")
	sealed, err := s.Seal("api-key-value")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	plain, err := s.Open(sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if plain != "api-key-value" {
		t.Fatalf("unexpected plaintext %q", plain)
	}
	if !s.Matches(sealed, "api-key-value") {
		t.Fatalf("expected match")
	}
	if s.Matches(sealed, "other") {
		t.Fatalf("expected mismatch")
	}
}

func TestSealerRejectsForeignKey(t *testing.T) {
	sealed, _ := NewSealer("one").Seal("value")
	if _, err := NewSealer("two").Open(sealed); err == nil {
		t.Fatalf("expected open with wrong key to fail")
	}
	if NewSealer("two").Matches(sealed, "value") {
		t.Fatalf("expected no match with wrong key")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !VerifyPassword(hash, "hunter2") {
		t.Fatalf("expected password to verify")
	}
	if VerifyPassword(hash, "hunter3") {
		t.Fatalf("expected wrong password to fail")
	}
	if VerifyPassword("", "hunter2") {
		t.Fatalf("expected empty hash to fail")
	}
}
