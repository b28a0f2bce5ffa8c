package auth

import (
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "secret1" {
		t.Error("hash should not equal the plain password")
	}
	if !CheckPasswordHash("secret1", hash) {
		t.Error("correct password rejected")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Error("wrong password accepted")
	}
}

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("user-id-1", "alice", "Ali", "Alice Chen", "alice@example.com", true)
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	claims, err := ValidateJWT(token)
	if err != nil {
		t.Fatalf("ValidateJWT failed: %v", err)
	}
	if claims.UserID != "user-id-1" || claims.Username != "alice" || !claims.Admin {
		t.Errorf("claims = %+v, want user-id-1/alice/admin", claims)
	}
	if claims.Nickname != "Ali" || claims.Realname != "Alice Chen" || claims.Email != "alice@example.com" {
		t.Errorf("identity claims = %+v", claims)
	}
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	if _, err := ValidateJWT("not-a-token"); err == nil {
		t.Error("garbage token accepted")
	}
}

func TestValidatePasswordPair(t *testing.T) {
	tests := []struct {
		name       string
		password   string
		repassword string
		want       []string
	}{
		{"valid", "secret1", "secret1", nil},
		{"missing both", "", "", []string{"Password is required", "Repeat password is required"}},
		{
			"short password gates mismatch",
			"abc", "def",
			[]string{"Length of password is at least 6"},
		},
		{
			"mismatch with valid password",
			"secret1", "secret2",
			[]string{"Password and repeat password are not matched"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := validatePasswordPair(tt.password, tt.repassword, "password")
			if len(got) != len(tt.want) {
				t.Fatalf("got errors %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("error %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestValidateSignup(t *testing.T) {
	valid := SignupRequest{
		Username:   "alice_01",
		Password:   "secret1",
		Repassword: "secret1",
		Nickname:   "Ali",
		Realname:   "Alice Chen",
		Email:      "alice@example.com",
	}
	if errs := validateSignup(&valid); len(errs) != 0 {
		t.Errorf("valid signup rejected: %v", errs)
	}

	bad := valid
	bad.Username = "a"
	if errs := validateSignup(&bad); len(errs) != 1 || errs[0] != "Length of username is at least 3" {
		t.Errorf("short username errors = %v", errs)
	}

	bad = valid
	bad.Username = "alice!"
	if errs := validateSignup(&bad); len(errs) != 1 || errs[0] != "Username can only contain alpha, number and underscores (_)" {
		t.Errorf("bad username errors = %v", errs)
	}

	bad = valid
	bad.Email = "not-an-email"
	if errs := validateSignup(&bad); len(errs) != 1 || errs[0] != "Format of email is wrong" {
		t.Errorf("bad email errors = %v", errs)
	}
}
