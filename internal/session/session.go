package session

import (
	"errors"
	"strings"

	"github.com/kazz187/taskbounty/internal/task"
)

var (
	ErrNotConnected = errors.New("wallet not connected")
	ErrUnknownTab   = errors.New("unknown tab")
)

// Session is the wallet/tab state of the client. It is a value: every
// transition returns a new Session and leaves the receiver untouched.
type Session struct {
	Address string   `json:"address"`
	Tab     task.Tab `json:"tab"`
}

func (s Session) Connected() bool {
	return s.Address != ""
}

// Connect moves to Connected(addr). Re-connecting keeps the active tab.
func (s Session) Connect(addr string) Session {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return Session{}
	}
	if !s.Connected() {
		return Session{Address: addr, Tab: task.TabNone}
	}
	return Session{Address: addr, Tab: s.Tab}
}

// Disconnect clears both the address and the tab.
func (s Session) Disconnect() Session {
	return Session{}
}

// AccountsChanged follows the provider's account list. The first usable
// account becomes the session address; none left means disconnected. A
// disconnected session ignores account changes.
func (s Session) AccountsChanged(accounts []string) Session {
	if !s.Connected() {
		return s
	}
	for _, a := range accounts {
		if a = strings.TrimSpace(a); a != "" {
			return Session{Address: a, Tab: s.Tab}
		}
	}
	return s.Disconnect()
}

func (s Session) SelectTab(tab task.Tab) (Session, error) {
	if !s.Connected() {
		return s, ErrNotConnected
	}
	if !tab.Valid() {
		return s, ErrUnknownTab
	}
	return Session{Address: s.Address, Tab: tab}, nil
}
