package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"olma/internal/config"
	"olma/internal/models"

	"github.com/gofiber/fiber/v2"
)

func newAuthTestServer(t *testing.T) *Server {
	t.Helper()
	s, _ := newTestServer(t)
	s.config = &config.Config{JWTSecret: "handler-test-secret"}
	return s
}

func TestSignupAndLogin(t *testing.T) {
	s := newAuthTestServer(t)

	app := fiber.New()
	app.Post("/auth/signup", s.Signup)
	app.Post("/auth/login", s.Login)
	app.Get("/me", s.AuthRequired(), func(c *fiber.Ctx) error {
		return models.RespondWithData(c, fiber.StatusOK, fiber.Map{
			"user_id": c.Locals("userID"),
		})
	})

	signup := fiber.Map{
		"username": "new_learner",
		"email":    "learner@example.com",
		"password": "a-long-enough-password",
	}
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/auth/signup", signup))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup status = %d, want 201 (%s)", resp.StatusCode, errorCode(t, resp))
	}
	var signedUp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	decodeData(t, resp, &signedUp)
	if signedUp.Token == "" {
		t.Fatal("signup returned no token")
	}
	if signedUp.User.Username != "new_learner" {
		t.Errorf("username = %q", signedUp.User.Username)
	}

	// Same email again conflicts.
	resp, _ = app.Test(jsonRequest(t, http.MethodPost, "/auth/signup", signup))
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate signup status = %d, want 409", resp.StatusCode)
	}

	// Login with the right password.
	resp, _ = app.Test(jsonRequest(t, http.MethodPost, "/auth/login", fiber.Map{
		"email":    "learner@example.com",
		"password": "a-long-enough-password",
	}))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want 200", resp.StatusCode)
	}
	var loggedIn struct {
		Token string `json:"token"`
	}
	decodeData(t, resp, &loggedIn)

	// The token passes the auth middleware.
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+loggedIn.Token)
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("auth with login token status = %d, want 200", resp.StatusCode)
	}

	// Wrong password and unknown email both come back 401.
	resp, _ = app.Test(jsonRequest(t, http.MethodPost, "/auth/login", fiber.Map{
		"email":    "learner@example.com",
		"password": "not-the-password",
	}))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad password status = %d, want 401", resp.StatusCode)
	}
	resp, _ = app.Test(jsonRequest(t, http.MethodPost, "/auth/login", fiber.Map{
		"email":    "nobody@example.com",
		"password": "a-long-enough-password",
	}))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unknown email status = %d, want 401", resp.StatusCode)
	}
}

func TestSignup_Validation(t *testing.T) {
	s := newAuthTestServer(t)

	app := fiber.New()
	app.Post("/auth/signup", s.Signup)

	cases := []struct {
		name string
		body fiber.Map
	}{
		{"missing fields", fiber.Map{"username": "someone"}},
		{"short password", fiber.Map{
			"username": "someone", "email": "s@example.com", "password": "short"}},
		{"bad email", fiber.Map{
			"username": "someone", "email": "not-an-email", "password": "a-long-enough-password"}},
		{"bad username", fiber.Map{
			"username": "x", "email": "s@example.com", "password": "a-long-enough-password"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := app.Test(jsonRequest(t, http.MethodPost, "/auth/signup", tc.body))
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			if code := errorCode(t, resp); code != models.CodeValidation {
				t.Errorf("error code = %s, want VALIDATION_ERROR", code)
			}
		})
	}
}

func TestRefreshAndLogout(t *testing.T) {
	s, _ := newTicketTestServer(t)
	s.config = &config.Config{JWTSecret: "handler-test-secret"}

	app := fiber.New()
	app.Post("/auth/signup", s.Signup)
	app.Post("/auth/refresh", s.Refresh)
	app.Post("/auth/logout", s.Logout)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/auth/signup", fiber.Map{
		"username": "refresher",
		"email":    "refresher@example.com",
		"password": "a-long-enough-password",
	}))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	var signedUp struct {
		Token string `json:"token"`
	}
	decodeData(t, resp, &signedUp)

	withToken := func(target string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, target, nil)
		req.Header.Set("Authorization", "Bearer "+signedUp.Token)
		return req
	}

	// A live token refreshes into a new one.
	resp, _ = app.Test(withToken("/auth/refresh"))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh status = %d, want 200", resp.StatusCode)
	}
	var refreshed struct {
		Token string `json:"token"`
	}
	decodeData(t, resp, &refreshed)
	if refreshed.Token == "" {
		t.Fatal("refresh returned no token")
	}

	// Logout revokes the presented token.
	resp, _ = app.Test(withToken("/auth/logout"))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout status = %d, want 200", resp.StatusCode)
	}

	// The revoked token can no longer refresh.
	resp, _ = app.Test(withToken("/auth/refresh"))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("revoked refresh status = %d, want 401", resp.StatusCode)
	}

	// No token at all is rejected.
	resp, _ = app.Test(httptest.NewRequest(http.MethodPost, "/auth/refresh", nil))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("missing token status = %d, want 401", resp.StatusCode)
	}
}
