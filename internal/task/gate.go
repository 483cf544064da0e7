package task

import (
	"math/big"
	"strings"
)

// CreateArgs is what a permitted create forwards to the registry.
type CreateArgs struct {
	Description string
	Bounty      *big.Rat
	Value       *big.Int
}

// CanRegister decides whether wallet may join t. A nil result means permitted.
func CanRegister(t *Task, wallet string) *Rejection {
	switch {
	case t.Completed:
		return reject(ReasonAlreadyCompleted, t.ID)
	case t.IsCreator(wallet):
		return reject(ReasonCannotRegisterOwnTask, t.ID)
	case IsParticipant(t, wallet):
		return reject(ReasonAlreadyRegistered, t.ID)
	}
	return nil
}

// CanComplete decides whether wallet may resolve t in favour of participant.
func CanComplete(t *Task, wallet, participant string) *Rejection {
	switch {
	case t.Completed:
		return reject(ReasonAlreadyCompleted, t.ID)
	case !t.IsCreator(wallet):
		return reject(ReasonNotCreator, t.ID)
	case strings.TrimSpace(participant) == "":
		return reject(ReasonNoParticipantSelected, t.ID)
	case !t.HasParticipant(participant):
		r := reject(ReasonParticipantNotRegistered, t.ID)
		r.Detail = participant
		return r
	}
	return nil
}

// CanCreate requires a non-blank description and a positive decimal bounty.
func CanCreate(description, bounty string) *Rejection {
	_, r := checkCreate(description, bounty)
	return r
}

// PrepareCreate runs CanCreate and converts the bounty into the registry's
// payable value units.
func PrepareCreate(description, bounty string, valueDecimals int) (*CreateArgs, *Rejection) {
	amount, r := checkCreate(description, bounty)
	if r != nil {
		return nil, r
	}
	value, err := ToUnits(amount, valueDecimals)
	if err != nil {
		r := reject(ReasonInvalidTaskInput, 0)
		r.Detail = err.Error()
		return nil, r
	}
	return &CreateArgs{
		Description: strings.TrimSpace(description),
		Bounty:      amount,
		Value:       value,
	}, nil
}

func checkCreate(description, bounty string) (*big.Rat, *Rejection) {
	if strings.TrimSpace(description) == "" {
		r := reject(ReasonInvalidTaskInput, 0)
		r.Detail = "description is empty"
		return nil, r
	}
	amount, err := ParseAmount(bounty)
	if err != nil {
		r := reject(ReasonInvalidTaskInput, 0)
		r.Detail = err.Error()
		return nil, r
	}
	if amount.Sign() <= 0 {
		r := reject(ReasonInvalidTaskInput, 0)
		r.Detail = "bounty must be positive"
		return nil, r
	}
	return amount, nil
}
