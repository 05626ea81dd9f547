package telegram

import (
	"errors"
	"strings"
)

const HelpText = `Commands:
/start - show this help
/help - show this help
/triggers - list reserve triggers
/add_trigger <currency> <op> [amount] [once]
/edit_trigger <id> <currency> <op> [amount] [once]
/enable <id>
/disable <id>
/delete <id>
/reserves - last observed reserves
/reset_reserves - forget observed reserves
/check - run a reserve check now
/notifications [on|off]
/orders - list tracked orders
/track <order_id> <token>
/untrack <order_id>
/refresh_orders - poll tracked orders now

Operators: > (greater than), < (less than), = (equal to), any (every change).
Triggers fire once when the reserve enters the condition, not on every check.
Add "once" to disable the trigger after it fires.
Example:
/add_trigger btc < 0.5
/add_trigger xmr any
`

var ErrInvalidArguments = errors.New("invalid arguments")

// TriggerArgs is the parsed form of "<currency> <op> [amount] [once]".
type TriggerArgs struct {
	Currency   string
	Comparison string
	Amount     string
	OnlyOnce   bool
}

func ParseTriggerArgs(args string) (TriggerArgs, error) {
	parts := strings.Fields(args)
	var parsed TriggerArgs
	if n := len(parts); n > 0 && strings.EqualFold(parts[n-1], "once") {
		parsed.OnlyOnce = true
		parts = parts[:n-1]
	}
	if len(parts) < 2 || len(parts) > 3 {
		return TriggerArgs{}, ErrInvalidArguments
	}
	parsed.Currency = parts[0]
	parsed.Comparison = parts[1]
	if len(parts) == 3 {
		parsed.Amount = parts[2]
	}
	return parsed, nil
}

// ParseEditTriggerArgs splits "<id> <currency> <op> [amount] [once]".
func ParseEditTriggerArgs(args string) (string, TriggerArgs, error) {
	id, rest, found := strings.Cut(strings.TrimSpace(args), " ")
	if !found || id == "" {
		return "", TriggerArgs{}, ErrInvalidArguments
	}
	parsed, err := ParseTriggerArgs(rest)
	if err != nil {
		return "", TriggerArgs{}, err
	}
	return id, parsed, nil
}

func ParseID(args string) (string, error) {
	parts := strings.Fields(args)
	if len(parts) != 1 {
		return "", ErrInvalidArguments
	}
	return parts[0], nil
}

func ParseTrackArgs(args string) (id, token string, err error) {
	parts := strings.Fields(args)
	if len(parts) != 2 {
		return "", "", ErrInvalidArguments
	}
	return parts[0], parts[1], nil
}

// ParseToggle reads an optional on/off argument. set is false when no
// argument was given.
func ParseToggle(args string) (enabled, set bool, err error) {
	switch strings.ToLower(strings.TrimSpace(args)) {
	case "":
		return false, false, nil
	case "on", "enable", "yes", "1":
		return true, true, nil
	case "off", "disable", "no", "0":
		return false, true, nil
	default:
		return false, false, ErrInvalidArguments
	}
}
