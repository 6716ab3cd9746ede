package auth

import (
	"strings"
	"testing"
)

// Tests use the minimum bcrypt cost — the default cost of 12 takes ~250ms
// per hash, which would make this file unbearably slow.
func newTestPasswordService(t *testing.T) *PasswordService {
	t.Helper()
	return NewPasswordServiceForTest(4)
}

// =========================================================================
// PASSWORD POLICY TESTS
// =========================================================================

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid password", "correct-horse-battery", false},
		{"exactly min length", "12345678", false},
		{"too short", "1234567", true},
		{"empty", "", true},
		{"contains password", "mypassword1", true},
		{"contains PASSWORD uppercase", "myPASSWORD1", true},
		{"contains PaSsWoRd mixed case", "xxPaSsWoRdxx", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

// =========================================================================
// HASH TESTS
// =========================================================================

func TestHash_NeverReturnsPlaintext(t *testing.T) {
	ps := newTestPasswordService(t)

	hash, err := ps.Hash("my-secret-password-123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "my-secret-password-123" {
		t.Fatal("Hash() returned the plaintext password")
	}
	if strings.Contains(hash, "my-secret-password-123") {
		t.Fatal("Hash() output contains the plaintext password")
	}
}

func TestHash_SamePasswordDifferentHashes(t *testing.T) {
	ps := newTestPasswordService(t)

	// bcrypt generates a random salt per call, so two hashes of the same
	// password must differ.
	hash1, _ := ps.Hash("same-password-123")
	hash2, _ := ps.Hash("same-password-123")

	if hash1 == hash2 {
		t.Error("Hash() returned identical hashes for the same password (missing salt?)")
	}
}

func TestHash_TooLongPassword(t *testing.T) {
	ps := newTestPasswordService(t)

	// bcrypt silently truncates input beyond 72 bytes; we reject it instead
	long := strings.Repeat("a", 73)
	if _, err := ps.Hash(long); err == nil {
		t.Fatal("Hash() should reject passwords longer than 72 bytes")
	}
}

// =========================================================================
// VERIFY TESTS
// =========================================================================

func TestVerify_CorrectPassword(t *testing.T) {
	ps := newTestPasswordService(t)

	hash, _ := ps.Hash("correct-password-123")
	if err := ps.Verify(hash, "correct-password-123"); err != nil {
		t.Errorf("Verify() error = %v for correct password", err)
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	ps := newTestPasswordService(t)

	hash, _ := ps.Hash("correct-password-123")
	if err := ps.Verify(hash, "wrong-password-456"); err == nil {
		t.Error("Verify() should fail for the wrong password")
	}
}

func TestVerify_EmptyHash(t *testing.T) {
	ps := newTestPasswordService(t)

	if err := ps.Verify("", "any-password-123"); err == nil {
		t.Error("Verify() should fail for an empty hash")
	}
}
