package auth

import (
	"testing"
	"time"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewJWTManager("secret", "cottonwood")
	token, err := m.GenerateToken("staff@example.com", RoleStaff, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Email != "staff@example.com" || claims.Role != RoleStaff {
		t.Errorf("claims = %+v", claims)
	}
}

func TestValidateRejects(t *testing.T) {
	m := NewJWTManager("secret", "cottonwood")

	expired, _ := m.GenerateToken("a@example.com", RoleAdmin, -time.Minute)
	customer, _ := m.GenerateToken("c@example.com", "customer", time.Hour)
	otherKey, _ := NewJWTManager("other", "cottonwood").GenerateToken("a@example.com", RoleAdmin, time.Hour)
	otherIssuer, _ := NewJWTManager("secret", "elsewhere").GenerateToken("a@example.com", RoleAdmin, time.Hour)

	for name, token := range map[string]string{
		"expired":      expired,
		"wrong role":   customer,
		"wrong key":    otherKey,
		"wrong issuer": otherIssuer,
		"garbage":      "not-a-token",
	} {
		if _, err := m.ValidateToken(token); err == nil {
			t.Errorf("%s: token accepted", name)
		}
	}
}
