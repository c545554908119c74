package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/bigkaa/goblog/internal/token"
)

func newAuthFixture(t *testing.T) (*AuthService, *mockAdminRepo, *token.Service) {
	t.Helper()
	admins := newMockAdminRepo()
	tokens := token.New([]byte("test-secret"), time.Hour)
	return NewAuthService(admins, tokens, testLogger()), admins, tokens
}

func seedAdmin(t *testing.T, admins *mockAdminRepo, username, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := admins.Create(context.Background(), username, string(hash)); err != nil {
		t.Fatal(err)
	}
}

func TestLoginSuccess(t *testing.T) {
	svc, admins, tokens := newAuthFixture(t)
	seedAdmin(t, admins, "admin", "secret")

	tok, admin, err := svc.Login(context.Background(), "admin", "secret")
	if err != nil {
		t.Fatalf("ожидается успешный вход, получена ошибка: %v", err)
	}
	if admin.Username != "admin" {
		t.Errorf("ожидается admin, получено %q", admin.Username)
	}

	adminID, ok := tokens.Verify(tok)
	if !ok {
		t.Fatal("выпущенный токен не проходит проверку")
	}
	if adminID != admin.ID {
		t.Errorf("ожидается sub=%q, получено %q", admin.ID, adminID)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, admins, _ := newAuthFixture(t)
	seedAdmin(t, admins, "admin", "secret")

	tok, _, err := svc.Login(context.Background(), "admin", "wrong")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("ожидается ValidationError, получено: %v", err)
	}
	if verr.Message != "密码错误" {
		t.Errorf("ожидается сообщение 密码错误, получено %q", verr.Message)
	}
	if tok != "" {
		t.Error("при неверном пароле токен выпускаться не должен")
	}
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, _, err := svc.Login(context.Background(), "ghost", "secret")
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Message != "用户不存在" {
		t.Fatalf("ожидается сообщение 用户不存在, получено: %v", err)
	}
}

func TestLoginEmptyCredentials(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	for _, tc := range []struct{ username, password string }{
		{"", "secret"},
		{"admin", ""},
		{"", ""},
	} {
		_, _, err := svc.Login(context.Background(), tc.username, tc.password)
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Message != "用户名或密码不能为空" {
			t.Errorf("(%q,%q): ожидается сообщение 用户名或密码不能为空, получено: %v",
				tc.username, tc.password, err)
		}
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	admin, err := svc.Register(context.Background(), "new-admin", "secret")
	if err != nil {
		t.Fatalf("ожидается успешная регистрация, получена ошибка: %v", err)
	}
	if admin.PasswordHash == "secret" {
		t.Fatal("пароль сохранён открытым текстом")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("secret")); err != nil {
		t.Errorf("хэш не соответствует паролю: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "new-admin", "secret"); err != nil {
		t.Errorf("вход после регистрации не удался: %v", err)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, admins, _ := newAuthFixture(t)
	seedAdmin(t, admins, "admin", "secret")

	_, err := svc.Register(context.Background(), "admin", "other")
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Message != "用户名已存在" {
		t.Fatalf("ожидается сообщение 用户名已存在, получено: %v", err)
	}
}
