package expense

import "fmt"

// Status is the lifecycle state of an expense. The numeric values match the
// rows of the expense_statuses reference table.
type Status int64

const (
	StatusDraft     Status = 1
	StatusSubmitted Status = 2
	StatusApproved  Status = 3
	StatusRejected  Status = 4
)

var statusNames = map[Status]string{
	StatusDraft:     "Draft",
	StatusSubmitted: "Submitted",
	StatusApproved:  "Approved",
	StatusRejected:  "Rejected",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int64(s))
}

func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// AllStatuses returns every known status in id order.
func AllStatuses() []Status {
	return []Status{StatusDraft, StatusSubmitted, StatusApproved, StatusRejected}
}

type Action string

const (
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

var actionTargets = map[Action]Status{
	ActionSubmit:  StatusSubmitted,
	ActionApprove: StatusApproved,
	ActionReject:  StatusRejected,
}

// legalFrom lists, per action, the statuses the action may start from.
var legalFrom = map[Action][]Status{
	ActionSubmit:  {StatusDraft},
	ActionApprove: {StatusSubmitted},
	ActionReject:  {StatusSubmitted},
}

// StateMachine decides the status an expense moves to for an action.
//
// With Strict unset every action is applied regardless of the current
// status: submitting an approved expense moves it back to Submitted, and a
// second submit just restamps SubmittedAt.
type StateMachine struct {
	Strict bool
}

func (m StateMachine) Next(current Status, action Action) (Status, error) {
	target, ok := actionTargets[action]
	if !ok {
		return current, fmt.Errorf("unknown action %q", action)
	}
	if !m.Strict {
		return target, nil
	}
	for _, from := range legalFrom[action] {
		if current == from {
			return target, nil
		}
	}
	return current, ErrInvalidTransition.WithCause(fmt.Errorf("cannot %s an expense in status %s", action, current))
}
