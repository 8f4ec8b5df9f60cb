package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Persister keeps a session snapshot outside the process so a later run
// can pick the session up again. Load returns (nil, nil) when nothing
// is stored.
type Persister interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	Clear(ctx context.Context) error
}

// Snapshot is the persisted form of a session
type Snapshot struct {
	Role    string   `json:"role"`
	UserID  string   `json:"user_id"`
	Name    string   `json:"name"`
	Cookies []Cookie `json:"cookies,omitempty"`
}

// Cookie is the subset of an API cookie worth persisting
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func newSnapshot(u User, cookies []*http.Cookie) Snapshot {
	snap := Snapshot{
		Role:   u.RawRole,
		UserID: u.UserID,
		Name:   u.Name,
	}
	for _, c := range cookies {
		snap.Cookies = append(snap.Cookies, Cookie{Name: c.Name, Value: c.Value})
	}
	return snap
}

// User rebuilds the session user from a snapshot
func (s Snapshot) User() User {
	return User{
		Role:    ParseRole(s.Role),
		RawRole: s.Role,
		UserID:  s.UserID,
		Name:    s.Name,
	}
}

func (s Snapshot) httpCookies() []*http.Cookie {
	cookies := make([]*http.Cookie, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return cookies
}

func encodeSnapshot(snap Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session snapshot: %w", err)
	}
	return data, nil
}

func decodeSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode session snapshot: %w", err)
	}
	return &snap, nil
}
