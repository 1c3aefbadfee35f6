package security

import "testing"

func TestPasswordHasher_HashAndVerify_RoundTrip(t *testing.T) {
	hasher := NewPasswordHasher()

	passwords := []string{"secret123", "日本語パスワード", "  spaces  ", "!@#$%^&*()"}

	for _, p := range passwords {
		hash, err := hasher.Hash(p)
		if err != nil {
			t.Fatalf("Hash(%q) returned error: %v", p, err)
		}
		if hash == "" {
			t.Fatalf("Hash(%q) returned empty hash", p)
		}
		if hash == p {
			t.Errorf("Hash(%q) returned the plaintext", p)
		}
		if !hasher.Verify(hash, p) {
			t.Errorf("Verify(hash, %q) = false, want true", p)
		}
	}
}

func TestPasswordHasher_Verify_WrongPassword(t *testing.T) {
	hasher := NewPasswordHasher()

	hash, err := hasher.Hash("correct-password")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if hasher.Verify(hash, "wrong-password") {
		t.Error("Verify with wrong password = true, want false")
	}
}

func TestPasswordHasher_Verify_EmptyHash_AlwaysFails(t *testing.T) {
	hasher := NewPasswordHasher()

	// フェデレーション専用アカウント（空ハッシュ）はどのパスワードでも
	// ローカルログインできない
	for _, p := range []string{"", "anything", "password"} {
		if hasher.Verify("", p) {
			t.Errorf("Verify(\"\", %q) = true, want false", p)
		}
	}
}

func TestPasswordHasher_Hash_DifferentSalts(t *testing.T) {
	hasher := NewPasswordHasher()

	h1, err := hasher.Hash("same-password")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h2, err := hasher.Hash("same-password")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if h1 == h2 {
		t.Error("two hashes of the same password are identical, salt not applied")
	}
}
