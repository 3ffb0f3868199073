package models

import "testing"

func TestUserMatches(t *testing.T) {
	var u User
	if u.Matches("", "") {
		t.Fatal("an account without a password must never match")
	}
	u.Username = "admin"
	if err := u.SetPassword("s3cret"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		username, password string
		want               bool
	}{
		{"admin", "s3cret", true},
		{"admin", "S3cret", false},
		{"Admin", "s3cret", false},
		{"", "s3cret", false},
	}
	for _, tt := range tests {
		if got := u.Matches(tt.username, tt.password); got != tt.want {
			t.Errorf("Matches(%q, %q) = %v, want %v", tt.username, tt.password, got, tt.want)
		}
	}
}
