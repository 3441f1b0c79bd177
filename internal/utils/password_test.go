package utils

import "testing"

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "" {
		t.Fatal("HashPassword returned empty hash")
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash must not equal the plaintext password")
	}
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	h1, err := HashPassword("referrals2024")
	if err != nil {
		t.Fatalf("first hash: %v", err)
	}
	h2, err := HashPassword("referrals2024")
	if err != nil {
		t.Fatalf("second hash: %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password should differ (bcrypt salts)")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("owner-secret-1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if !CheckPassword("owner-secret-1", hash) {
		t.Error("correct password rejected")
	}
	if CheckPassword("owner-secret-2", hash) {
		t.Error("wrong password accepted")
	}
	if CheckPassword("", hash) {
		t.Error("empty password accepted")
	}
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	if CheckPassword("anything", "not-a-bcrypt-hash") {
		t.Error("malformed hash accepted")
	}
	if CheckPassword("anything", "") {
		t.Error("empty hash accepted")
	}
}
