package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicgate/clinicgate/internal/client"
)

// fakeAPI scripts the next response of each endpoint
type fakeAPI struct {
	loginResp   *client.LoginResponse
	loginErr    error
	registerErr error
	logoutErr   error

	registered []map[string]any
	logouts    int
	cookies    []*http.Cookie
}

func (f *fakeAPI) Login(_ context.Context, _, _ string) (*client.LoginResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeAPI) Register(_ context.Context, payload map[string]any) (map[string]any, error) {
	f.registered = append(f.registered, payload)
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return map[string]any{"message": "Patient registered successfully!"}, nil
}

func (f *fakeAPI) Logout(_ context.Context) error {
	f.logouts++
	return f.logoutErr
}

func (f *fakeAPI) Cookies() []*http.Cookie            { return f.cookies }
func (f *fakeAPI) SetCookies(cookies []*http.Cookie) { f.cookies = cookies }

// memPersister is an in-memory Persister
type memPersister struct {
	mu      sync.Mutex
	snap    *Snapshot
	loadErr error
	saveErr error
}

func (m *memPersister) Load(_ context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap, m.loadErr
}

func (m *memPersister) Save(_ context.Context, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snap = &snap
	return nil
}

func (m *memPersister) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = nil
	return nil
}

func doctorLogin() *client.LoginResponse {
	return &client.LoginResponse{
		Role:     "doctor",
		DoctorID: "D1",
		Name:     "Dr. X",
		Raw:      map[string]any{"role": "doctor", "doctor_id": "D1", "name": "Dr. X"},
	}
}

func loggedInStore(t *testing.T, api *fakeAPI, opts ...Option) *Store {
	t.Helper()

	api.loginResp = doctorLogin()
	store := New(api, opts...)
	require.True(t, store.Login(context.Background(), "u", "p").Success)
	return store
}

func TestLogin_DoctorIDBecomesUserID(t *testing.T) {
	api := &fakeAPI{loginResp: doctorLogin()}
	store := New(api)

	result := store.Login(context.Background(), "u", "p")
	require.True(t, result.Success)
	assert.Nil(t, result.Failure)
	assert.Equal(t, "D1", result.Data["doctor_id"])

	user, ok := store.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, User{Role: RoleDoctor, RawRole: "doctor", UserID: "D1", Name: "Dr. X"}, user)
	assert.True(t, store.IsAuthenticated())
}

func TestLogin_PrefersUserID(t *testing.T) {
	api := &fakeAPI{loginResp: &client.LoginResponse{Role: "patient", UserID: "P1", DoctorID: "D9", Name: "Pat"}}
	store := New(api)

	require.True(t, store.Login(context.Background(), "u", "p").Success)
	user, _ := store.CurrentUser()
	assert.Equal(t, "P1", user.UserID)
	assert.Equal(t, RolePatient, user.Role)
}

func TestLogin_RejectedLeavesSessionUnchanged(t *testing.T) {
	api := &fakeAPI{}
	store := loggedInStore(t, api)
	before, _ := store.CurrentUser()

	api.loginErr = &client.APIError{StatusCode: http.StatusUnauthorized, Message: "bad creds"}
	result := store.Login(context.Background(), "u", "wrong")

	assert.False(t, result.Success)
	require.NotNil(t, result.Failure)
	assert.Equal(t, "bad creds", result.Error())
	assert.Equal(t, ErrorKindRejected, result.Failure.Kind)
	assert.Equal(t, http.StatusUnauthorized, result.Failure.Status)

	after, ok := store.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, before, after)
}

func TestLogin_FailureFallbackMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind ErrorKind
	}{
		{name: "transport", err: fmt.Errorf("failed to send request: %w", errors.New("connection refused")), kind: ErrorKindTransport},
		{name: "rejected without message", err: &client.APIError{StatusCode: 500, Body: []byte("<html>")}, kind: ErrorKindRejected},
		{name: "malformed", err: &client.DecodeError{Err: errors.New("unexpected EOF")}, kind: ErrorKindMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := New(&fakeAPI{loginErr: tt.err})

			result := store.Login(context.Background(), "u", "p")
			assert.False(t, result.Success)
			assert.Equal(t, MsgLoginFailed, result.Error())
			assert.Equal(t, tt.kind, result.Failure.Kind)
			assert.ErrorIs(t, result.Failure, tt.err)
			assert.False(t, store.IsAuthenticated())
		})
	}
}

func TestLogin_IncompleteResponseIsMalformed(t *testing.T) {
	tests := map[string]*client.LoginResponse{
		"missing role": {UserID: "1", Name: "x"},
		"missing id":   {Role: "patient", Name: "x"},
	}

	for name, resp := range tests {
		t.Run(name, func(t *testing.T) {
			store := New(&fakeAPI{loginResp: resp})

			result := store.Login(context.Background(), "u", "p")
			assert.False(t, result.Success)
			assert.Equal(t, ErrorKindMalformed, result.Failure.Kind)
			assert.Equal(t, MsgLoginFailed, result.Error())
			assert.False(t, store.IsAuthenticated())
		})
	}
}

func TestLogin_UnknownRoleKeepsRawValue(t *testing.T) {
	store := New(&fakeAPI{loginResp: &client.LoginResponse{Role: "nurse", UserID: "X1"}})

	require.True(t, store.Login(context.Background(), "u", "p").Success)
	user, _ := store.CurrentUser()
	assert.Equal(t, RoleUnknown, user.Role)
	assert.Equal(t, "nurse", user.RawRole)
}

func TestRegister_NeverTouchesSession(t *testing.T) {
	api := &fakeAPI{}
	store := New(api)

	result := store.Register(context.Background(), map[string]any{"username": "new", "password": "pw", "age": 30})
	require.True(t, result.Success)
	assert.Equal(t, "Patient registered successfully!", result.Data["message"])
	assert.False(t, store.IsAuthenticated())
	require.Len(t, api.registered, 1)
	assert.Equal(t, 30, api.registered[0]["age"])

	api.registerErr = &client.APIError{StatusCode: http.StatusBadRequest, Message: "Username already exists"}
	result = store.Register(context.Background(), map[string]any{"username": "new"})
	assert.False(t, result.Success)
	assert.Equal(t, "Username already exists", result.Error())

	api.registerErr = errors.New("dial tcp: connection refused")
	result = store.Register(context.Background(), nil)
	assert.Equal(t, MsgRegistrationFailed, result.Error())
	assert.Equal(t, ErrorKindTransport, result.Failure.Kind)
}

func TestRegister_WhileLoggedIn(t *testing.T) {
	api := &fakeAPI{}
	store := loggedInStore(t, api)
	before, _ := store.CurrentUser()

	api.registerErr = errors.New("boom")
	store.Register(context.Background(), map[string]any{})

	after, ok := store.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, before, after)
}

func TestLogout_ClearsSession(t *testing.T) {
	api := &fakeAPI{}
	store := loggedInStore(t, api)

	result := store.Logout(context.Background())
	assert.True(t, result.Success)
	assert.Nil(t, result.Failure)
	assert.False(t, store.IsAuthenticated())
}

func TestLogout_NetworkFailureLeavesStaleSession(t *testing.T) {
	api := &fakeAPI{}
	store := loggedInStore(t, api)
	before, _ := store.CurrentUser()

	api.logoutErr = fmt.Errorf("failed to send request: %w", errors.New("connection reset"))
	result := store.Logout(context.Background())

	assert.False(t, result.Success)
	assert.Equal(t, MsgLogoutFailed, result.Error())
	assert.Equal(t, ErrorKindTransport, result.Failure.Kind)

	after, ok := store.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, before, after)
}

func TestLogout_IgnoresServerMessage(t *testing.T) {
	api := &fakeAPI{logoutErr: &client.APIError{StatusCode: 500, Message: "db down"}}
	store := New(api)

	result := store.Logout(context.Background())
	assert.Equal(t, MsgLogoutFailed, result.Error())
	assert.Equal(t, ErrorKindRejected, result.Failure.Kind)
}

func TestLogout_Twice(t *testing.T) {
	api := &fakeAPI{}
	store := loggedInStore(t, api)

	assert.NotPanics(t, func() {
		first := store.Logout(context.Background())
		second := store.Logout(context.Background())
		assert.True(t, first.Success)
		assert.True(t, second.Success)
	})
	assert.Equal(t, 2, api.logouts)
	assert.False(t, store.IsAuthenticated())
}

func TestPersistence_RoundTrip(t *testing.T) {
	persister := &memPersister{}
	api := &fakeAPI{cookies: []*http.Cookie{{Name: "session", Value: "abc"}}}
	store := loggedInStore(t, api, WithPersister(persister))

	require.NotNil(t, persister.snap)
	assert.Equal(t, "doctor", persister.snap.Role)
	assert.Equal(t, "D1", persister.snap.UserID)
	assert.Equal(t, []Cookie{{Name: "session", Value: "abc"}}, persister.snap.Cookies)
	require.NoError(t, store.Close())

	// A new process picks the session up
	api2 := &fakeAPI{}
	restored := New(api2, WithPersister(persister))
	require.NoError(t, restored.Open(context.Background()))

	user, ok := restored.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, RoleDoctor, user.Role)
	assert.Equal(t, "Dr. X", user.Name)
	require.Len(t, api2.cookies, 1)
	assert.Equal(t, "abc", api2.cookies[0].Value)

	require.True(t, restored.Logout(context.Background()).Success)
	assert.Nil(t, persister.snap)
}

func TestPersistence_FailedLogoutKeepsSnapshot(t *testing.T) {
	persister := &memPersister{}
	api := &fakeAPI{}
	store := loggedInStore(t, api, WithPersister(persister))

	api.logoutErr = errors.New("offline")
	store.Logout(context.Background())
	assert.NotNil(t, persister.snap)
}

func TestPersistence_ErrorsDoNotChangeResults(t *testing.T) {
	persister := &memPersister{saveErr: errors.New("keychain locked")}
	api := &fakeAPI{loginResp: doctorLogin()}
	store := New(api, WithPersister(persister))

	assert.True(t, store.Login(context.Background(), "u", "p").Success)
	assert.True(t, store.IsAuthenticated())
}

func TestOpen_IgnoresBadSnapshots(t *testing.T) {
	tests := map[string]*memPersister{
		"load error": {loadErr: errors.New("unreadable")},
		"incomplete": {snap: &Snapshot{Role: "admin"}},
		"empty":      {},
	}

	for name, persister := range tests {
		t.Run(name, func(t *testing.T) {
			store := New(&fakeAPI{}, WithPersister(persister))
			require.NoError(t, store.Open(context.Background()))
			assert.False(t, store.IsAuthenticated())
		})
	}
}

func TestOpen_WithoutPersister(t *testing.T) {
	store := New(&fakeAPI{})
	assert.NoError(t, store.Open(context.Background()))
	assert.NoError(t, store.Close())
}

func TestStore_ConcurrentReads(t *testing.T) {
	api := &fakeAPI{}
	store := loggedInStore(t, api)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.CurrentUser()
			store.IsAuthenticated()
		}()
	}
	wg.Wait()
}
