package task

import (
	"strings"
	"time"
)

// RewardDecimals is the fixed scale of the raw reward stored by the registry.
const RewardDecimals = 8

// Task is a normalized snapshot of one registry record. Tasks held by a Store
// are never mutated; a refresh replaces them.
type Task struct {
	ID           uint64   `json:"id" yaml:"id"`
	Description  string   `json:"description" yaml:"description"`
	Reward       float64  `json:"reward" yaml:"reward"`
	Creator      string   `json:"creator" yaml:"creator"`
	Participants []string `json:"participants" yaml:"participants"`
	Completed    bool     `json:"completed" yaml:"completed"`
}

// RawTask is a record as returned by a registry collaborator. ID and Reward
// are left untyped because adapters hand them over in whatever numeric
// encoding their transport produced.
type RawTask struct {
	ID           any      `json:"id" yaml:"id"`
	Description  any      `json:"description" yaml:"description"`
	Reward       any      `json:"reward" yaml:"reward"`
	Creator      string   `json:"creator" yaml:"creator"`
	Participants []string `json:"participants" yaml:"participants"`
	Completed    bool     `json:"completed" yaml:"completed"`
}

// Snapshot is the content of a Store at one point in time.
type Snapshot struct {
	Tasks      []*Task   `json:"tasks"`
	Generation uint64    `json:"generation"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// SameAddress compares two addresses ignoring case. Empty never matches.
func SameAddress(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}

// IsCreator reports whether wallet created t.
func (t *Task) IsCreator(wallet string) bool {
	return SameAddress(t.Creator, wallet)
}

// HasParticipant reports whether addr is registered on t.
func (t *Task) HasParticipant(addr string) bool {
	_, ok := t.Participant(addr)
	return ok
}

// Participant returns the registered entry matching addr, as the registry
// reported it.
func (t *Task) Participant(addr string) (string, bool) {
	for _, p := range t.Participants {
		if SameAddress(p, addr) {
			return p, true
		}
	}
	return "", false
}
