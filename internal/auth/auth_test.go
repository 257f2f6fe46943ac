package auth_test

import (
	"errors"
	"testing"

	"steward/internal/auth"
	"steward/internal/services"
	"steward/internal/store"
	"steward/internal/testsupport"
)

func TestTokenRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	a := auth.New(cfg)

	user := &store.User{ID: "u-1", Username: "dale", Role: store.RoleHubMaster}
	token, err := a.IssueToken(user)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	claims, err := a.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.Subject != "u-1" || claims.Username != "dale" {
		t.Fatalf("claims = %#v", claims)
	}
	if !claims.IsHubMaster() {
		t.Fatal("hub master claim lost")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	token, err := auth.New(cfg).IssueToken(&store.User{ID: "u-1", Username: "dale", Role: store.RoleHubCap})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	other := testsupport.NewConfig(t)
	other.Server.JWTSecret = "different-secret"
	_, err = auth.New(other).VerifyToken(token)
	if !errors.Is(err, services.ErrUnauthorized) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	if _, ok := auth.BearerToken(""); ok {
		t.Fatal("empty header should not parse")
	}
	if _, ok := auth.BearerToken("Basic abc"); ok {
		t.Fatal("non-bearer header should not parse")
	}
	token, ok := auth.BearerToken("Bearer abc.def.ghi")
	if !ok || token != "abc.def.ghi" {
		t.Fatalf("token = %q ok = %v", token, ok)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("machinist-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "machinist-password" {
		t.Fatal("password stored in plaintext")
	}
	if !auth.CheckPassword(hash, "machinist-password") {
		t.Fatal("correct password rejected")
	}
	if auth.CheckPassword(hash, "wrong") {
		t.Fatal("wrong password accepted")
	}
}
