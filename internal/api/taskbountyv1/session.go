// Package taskbountyv1 holds the wire messages of the taskbounty.v1 API.
package taskbountyv1

import "time"

type Session struct {
	Address    string `json:"address"`
	Tab        string `json:"tab"`
	Connected  bool   `json:"connected"`
	Generation uint64 `json:"generation"`
	TaskCount  int    `json:"task_count"`
}

type Task struct {
	ID           uint64   `json:"id" yaml:"id"`
	Description  string   `json:"description" yaml:"description"`
	Reward       float64  `json:"reward" yaml:"reward"`
	Creator      string   `json:"creator" yaml:"creator"`
	Participants []string `json:"participants" yaml:"participants"`
	Completed    bool     `json:"completed" yaml:"completed"`
}

type Views struct {
	Wallet       string  `json:"wallet" yaml:"wallet"`
	Generation   uint64  `json:"generation" yaml:"generation"`
	OpenBounties []*Task `json:"open_bounties" yaml:"open_bounties"`
	InProgress   []*Task `json:"in_progress" yaml:"in_progress"`
	Completed    []*Task `json:"completed" yaml:"completed"`
}

type Receipt struct {
	TxHash      string `json:"tx_hash"`
	BlockNumber uint64 `json:"block_number"`
	GasUsed     uint64 `json:"gas_used"`
}

type Event struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	ResourceID string            `json:"resource_id,omitempty"`
	Payload    string            `json:"payload,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

type GetSessionRequest struct{}

type GetSessionResponse struct {
	Session *Session `json:"session"`
}

type ConnectRequest struct{}

type ConnectResponse struct {
	Session *Session `json:"session"`
}

type DisconnectRequest struct{}

type DisconnectResponse struct {
	Session *Session `json:"session"`
}

type SelectTabRequest struct {
	Tab string `json:"tab"`
}

type SelectTabResponse struct {
	Session *Session `json:"session"`
}

type RefreshRequest struct{}

type RefreshResponse struct {
	Generation uint64    `json:"generation"`
	FetchedAt  time.Time `json:"fetched_at"`
	Tasks      []*Task   `json:"tasks"`
}

type ListViewsRequest struct {
	// Tab narrows the response to one tab. Empty returns every view.
	Tab string `json:"tab,omitempty"`
}

type ListViewsResponse struct {
	Views *Views  `json:"views"`
	Tab   string  `json:"tab,omitempty"`
	Tasks []*Task `json:"tasks,omitempty"`
}

type CreateTaskRequest struct {
	Description string `json:"description"`
	// Bounty is a plain decimal amount, e.g. "2.5".
	Bounty string `json:"bounty"`
}

type CreateTaskResponse struct {
	Receipt *Receipt `json:"receipt"`
}

type RegisterForTaskRequest struct {
	TaskID uint64 `json:"task_id"`
}

type RegisterForTaskResponse struct {
	Receipt *Receipt `json:"receipt"`
}

type CompleteTaskRequest struct {
	TaskID      uint64 `json:"task_id"`
	Participant string `json:"participant"`
}

type CompleteTaskResponse struct {
	Receipt *Receipt `json:"receipt"`
}

type SubscribePushRequest struct {
	Endpoint  string `json:"endpoint"`
	P256dhKey string `json:"p256dh_key"`
	AuthKey   string `json:"auth_key"`
}

type SubscribePushResponse struct {
	ID             string `json:"id"`
	VAPIDPublicKey string `json:"vapid_public_key"`
}

type WatchEventsRequest struct {
	Types []string `json:"types,omitempty"`
}
