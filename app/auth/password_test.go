package auth

import (
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("MySecurePassword123")
	if err != nil {
		t.Fatalf("HashPassword() failed: %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=1,p=4$") {
		t.Errorf("Unexpected hash prefix: %s", hash)
	}

	hash2, err := HashPassword("MySecurePassword123")
	if err != nil {
		t.Fatalf("HashPassword() failed on second call: %v", err)
	}
	if hash == hash2 {
		t.Error("Two hashes of same password should differ by salt")
	}
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("secret")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
		wantErr  bool
	}{
		{name: "correct password", password: "secret", hash: hash, want: true},
		{name: "wrong password", password: "Secret", hash: hash, want: false},
		{name: "invalid format", password: "secret", hash: "invalid", wantErr: true},
		{name: "wrong algorithm", password: "secret", hash: "$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA", wantErr: true},
		{name: "wrong version", password: "secret", hash: "$argon2id$v=16$m=65536,t=1,p=4$c2FsdA$aGFzaA", wantErr: true},
		{name: "bad salt", password: "secret", hash: "$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VerifyPassword(tt.password, tt.hash)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error=%v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDummyHashVerifies(t *testing.T) {
	for _, password := range []string{"", "secret", "MySecurePassword123"} {
		ok, err := VerifyPassword(password, dummyHash)
		if err != nil {
			t.Fatalf("Expected dummy hash to parse, got %v", err)
		}
		if ok {
			t.Errorf("Expected %q not to match the dummy hash", password)
		}
	}
}
