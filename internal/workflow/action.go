package workflow

import (
	"fmt"
	"strconv"
	"strings"
)

// ActionKind enumerates the closed set of interactive button actions.
type ActionKind string

const (
	ActionApprove       ActionKind = "approve"
	ActionReject        ActionKind = "reject"
	ActionRequestDelete ActionKind = "request_delete"
	ActionDeleteApprove ActionKind = "delete_approve"
	ActionDeleteReject  ActionKind = "delete_reject"
)

// actionSeparator is the fixed field separator in button payloads.
const actionSeparator = "|"

// Action is a parsed button payload. Payloads are parsed exactly once at the
// transport boundary and carried as this tagged value downstream.
//
// Argument layout per kind:
//
//	approve|<key>            reject|<key>
//	request_delete|<key>
//	delete_approve|<key>|<requester_id>
//	delete_reject|<key>|<requester_id>
type Action struct {
	Kind        ActionKind
	Key         string
	RequesterID int64
}

// Encode renders the action as a button payload string.
func (a Action) Encode() string {
	switch a.Kind {
	case ActionDeleteApprove, ActionDeleteReject:
		return string(a.Kind) + actionSeparator + a.Key + actionSeparator + strconv.FormatInt(a.RequesterID, 10)
	default:
		return string(a.Kind) + actionSeparator + a.Key
	}
}

// ParseAction parses a raw button payload. Unknown kinds and malformed
// argument tuples are errors; callers drop such payloads with a log line.
func ParseAction(data string) (Action, error) {
	parts := strings.Split(data, actionSeparator)
	kind := ActionKind(parts[0])

	switch kind {
	case ActionApprove, ActionReject, ActionRequestDelete:
		if len(parts) != 2 || parts[1] == "" {
			return Action{}, fmt.Errorf("action %s: want 1 argument, got %d", kind, len(parts)-1)
		}
		return Action{Kind: kind, Key: parts[1]}, nil

	case ActionDeleteApprove, ActionDeleteReject:
		if len(parts) != 3 || parts[1] == "" {
			return Action{}, fmt.Errorf("action %s: want 2 arguments, got %d", kind, len(parts)-1)
		}
		requester, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return Action{}, fmt.Errorf("action %s: bad requester id %q", kind, parts[2])
		}
		return Action{Kind: kind, Key: parts[1], RequesterID: requester}, nil

	default:
		return Action{}, fmt.Errorf("unknown action %q", parts[0])
	}
}
