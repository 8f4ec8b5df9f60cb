package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/clinicgate/clinicgate/internal/router"
	"github.com/clinicgate/clinicgate/internal/session"
)

// mockAPIServer creates a mock appointment API for testing
func mockAPIServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req.Username != "drx" || req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "Invalid username or password"}`))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "s1", Path: "/"})
		w.Write([]byte(`{"message":"Login successful","role":"doctor","doctor_id":4,"name":"Dr. X"}`))
	})
	mux.HandleFunc("/register", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.NotContains(t, payload, "phone", "unset fields must not be sent")

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"message":"Patient registered successfully!","patient_id":12}`))
	})
	mux.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"Logged out successfully"}`))
	})

	return httptest.NewServer(mux)
}

// setupTestEnvironment points the CLI at a mock API with a mock keyring
func setupTestEnvironment(t *testing.T, apiURL string) {
	t.Helper()

	keyring.MockInit()
	t.Setenv("API_BASE_URL", apiURL)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("CLINICGATE_USERNAME", "")
	t.Setenv("CLINICGATE_PASSWORD", "")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := &cobra.Command{Use: "clinicgate", SilenceUsage: true, SilenceErrors: true}
	root.AddCommand(NewLoginCmd(), NewRegisterCmd(), NewLogoutCmd(), NewWhoamiCmd(), NewRoutesCmd(), NewNavigateCmd())

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLoginCommand_Flags(t *testing.T) {
	cmd := NewLoginCmd()

	assert.Equal(t, "login", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("username"))
	assert.NotNil(t, cmd.Flags().Lookup("password"))
}

func TestLoginCommand_MissingUsername(t *testing.T) {
	setupTestEnvironment(t, "http://127.0.0.1:1")

	_, err := execute(t, "login", "--password", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username is required")
}

func TestLoginCommand_SessionSurvivesRuns(t *testing.T) {
	srv := mockAPIServer(t)
	defer srv.Close()
	setupTestEnvironment(t, srv.URL)

	out, err := execute(t, "login", "--username", "drx", "--password", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "Login successful")
	assert.Contains(t, out, "/doctor/4/dashboard")

	out, err = execute(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Dr. X")
	assert.Contains(t, out, "doctor")

	out, err = execute(t, "navigate", "/login")
	require.NoError(t, err)
	assert.Contains(t, out, "/doctor/4/dashboard (doctor-dashboard)")

	out, err = execute(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")

	out, err = execute(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in.")
}

func TestLoginCommand_EnvCredentials(t *testing.T) {
	srv := mockAPIServer(t)
	defer srv.Close()
	setupTestEnvironment(t, srv.URL)
	t.Setenv("CLINICGATE_USERNAME", "drx")
	t.Setenv("CLINICGATE_PASSWORD", "secret")

	_, err := execute(t, "login")
	assert.NoError(t, err)
}

func TestLoginCommand_Rejected(t *testing.T) {
	srv := mockAPIServer(t)
	defer srv.Close()
	setupTestEnvironment(t, srv.URL)

	_, err := execute(t, "login", "--username", "drx", "--password", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid username or password")

	var failure *session.Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, session.ErrorKindRejected, failure.Kind)
}

func TestLogoutCommand_ServerDownKeepsSession(t *testing.T) {
	srv := mockAPIServer(t)
	setupTestEnvironment(t, srv.URL)

	_, err := execute(t, "login", "--username", "drx", "--password", "secret")
	require.NoError(t, err)
	srv.Close()

	out, err := execute(t, "logout")
	require.Error(t, err)
	assert.Equal(t, "Logout failed", err.Error())
	assert.Contains(t, out, "local session was kept")

	out, err = execute(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Dr. X")
}

func TestLogoutCommand_WithoutSession(t *testing.T) {
	srv := mockAPIServer(t)
	defer srv.Close()
	setupTestEnvironment(t, srv.URL)

	_, err := execute(t, "logout")
	assert.NoError(t, err)
	_, err = execute(t, "logout")
	assert.NoError(t, err)
}

func TestRegisterCommand(t *testing.T) {
	srv := mockAPIServer(t)
	defer srv.Close()
	setupTestEnvironment(t, srv.URL)

	out, err := execute(t, "register", "--username", "newbie", "--password", "pw123", "--email", "n@example.com", "--age", "30")
	require.NoError(t, err)
	assert.Contains(t, out, "Registration successful")
	assert.Contains(t, out, "Patient ID: 12")

	out, err = execute(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in.")
}

func TestRegisterCommand_Validation(t *testing.T) {
	setupTestEnvironment(t, "http://127.0.0.1:1")

	tests := map[string][]string{
		"missing username": {"register", "--password", "pw123"},
		"short password":   {"register", "--username", "a", "--password", "pw"},
		"bad email":        {"register", "--username", "a", "--password", "pw123", "--email", "nope"},
		"bad gender":       {"register", "--username", "a", "--password", "pw123", "--gender", "x"},
		"bad age":          {"register", "--username", "a", "--password", "pw123", "--age", "200"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := execute(t, args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid registration")
		})
	}
}

func TestRegistration_Payload(t *testing.T) {
	p := registration{Username: "u", Password: "p", Email: "e@x.io", Age: 40}.payload()

	assert.Equal(t, map[string]any{"username": "u", "password": "p", "email": "e@x.io", "age": 40}, p)
}

func TestRoutesCommand(t *testing.T) {
	out, err := execute(t, "routes")
	require.NoError(t, err)

	assert.Contains(t, out, "/departments/:id")
	assert.Contains(t, out, "DepartmentDetails")
	assert.Contains(t, out, "redirect /login")
	assert.Contains(t, out, "guests only")
}

// fixedUser is a SessionReader with a preset user
type fixedUser struct {
	user *session.User
}

func (f fixedUser) CurrentUser() (session.User, bool) {
	if f.user == nil {
		return session.User{}, false
	}
	return *f.user, true
}

func TestRunNavigate(t *testing.T) {
	newNav := func(s router.SessionReader) *router.Navigator {
		return router.NewNavigator(router.Default(), router.NewGuard(s, zerolog.Nop()), zerolog.Nop())
	}

	var out bytes.Buffer
	require.NoError(t, runNavigate(&out, newNav(fixedUser{}), "/"))
	assert.Contains(t, out.String(), "route redirect")
	assert.Contains(t, out.String(), "/login (login)")

	out.Reset()
	admin := &session.User{Role: session.RoleAdmin, RawRole: "admin", UserID: "1"}
	require.NoError(t, runNavigate(&out, newNav(fixedUser{user: admin}), "/register"))
	assert.Contains(t, out.String(), "guest-only")
	assert.Contains(t, out.String(), "/admin/dashboard (admin-dashboard)")

	out.Reset()
	nurse := &session.User{Role: session.RoleUnknown, RawRole: "nurse", UserID: "X1"}
	err := runNavigate(&out, newNav(fixedUser{user: nurse}), "/login")
	assert.ErrorIs(t, err, router.ErrRedirectLoop)

	err = runNavigate(&out, newNav(fixedUser{}), "/nowhere")
	assert.ErrorIs(t, err, router.ErrNoRoute)
}
