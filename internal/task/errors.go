package task

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord marks a registry record that could not be normalized.
var ErrMalformedRecord = errors.New("malformed task record")

// Reason identifies why the action gate refused an action.
type Reason string

const (
	ReasonAlreadyRegistered        Reason = "AlreadyRegistered"
	ReasonAlreadyCompleted         Reason = "AlreadyCompleted"
	ReasonCannotRegisterOwnTask    Reason = "CannotRegisterOwnTask"
	ReasonNotCreator               Reason = "NotCreator"
	ReasonNoParticipantSelected    Reason = "NoParticipantSelected"
	ReasonParticipantNotRegistered Reason = "ParticipantNotRegistered"
	ReasonInvalidTaskInput         Reason = "InvalidTaskInput"
)

var reasonMessages = map[Reason]string{
	ReasonAlreadyRegistered:        "wallet is already registered for this task",
	ReasonAlreadyCompleted:         "task is already completed",
	ReasonCannotRegisterOwnTask:    "creators cannot register for their own task",
	ReasonNotCreator:               "only the task creator can mark it complete",
	ReasonNoParticipantSelected:    "select a participant to pay out",
	ReasonParticipantNotRegistered: "selected participant is not registered for this task",
	ReasonInvalidTaskInput:         "description and a positive bounty are required",
}

// Rejection is the action gate's refusal. It never leaves the client: the
// collaborator is not called when one is returned.
type Rejection struct {
	Reason Reason
	TaskID uint64
	Detail string
}

func reject(reason Reason, taskID uint64) *Rejection {
	return &Rejection{Reason: reason, TaskID: taskID}
}

func (r *Rejection) Message() string {
	msg := reasonMessages[r.Reason]
	if r.Detail != "" {
		msg += ": " + r.Detail
	}
	return msg
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("action rejected (%s): %s", r.Reason, r.Message())
}

// malformed wraps ErrMalformedRecord with the field that failed.
func malformed(field string, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrMalformedRecord, field, fmt.Sprintf(format, args...))
}
