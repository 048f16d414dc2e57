package auth

import (
	"strings"
	"testing"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Fatalf("unexpected hash format: %q", hash)
	}
	if !CheckPassword("correct horse battery staple", hash) {
		t.Fatal("correct password did not verify")
	}
	if CheckPassword("wrong password", hash) {
		t.Fatal("wrong password verified")
	}
}

func TestHashPasswordSaltsEachCall(t *testing.T) {
	a, err := HashPassword("samepassword")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	b, err := HashPassword("samepassword")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if a == b {
		t.Fatal("two hashes of the same password are identical")
	}
}

func TestCheckPasswordMalformedHash(t *testing.T) {
	for _, hash := range []string{"", "not-a-hash", "$2a$garbage"} {
		if CheckPassword("anything", hash) {
			t.Fatalf("malformed hash %q verified", hash)
		}
	}
}
