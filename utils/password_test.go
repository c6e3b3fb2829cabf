package utils

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "s3cret-pass" {
		t.Error("HashPassword() must not return the plaintext")
	}

	if !CheckPassword(hash, "s3cret-pass") {
		t.Error("CheckPassword() should accept the correct password")
	}
	if CheckPassword(hash, "wrong-pass") {
		t.Error("CheckPassword() should reject a wrong password")
	}
}
