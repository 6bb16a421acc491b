package tui

// Action is what a key press asks the terminal front end to do.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionFocusNext
	ActionFocusPrev
	ActionUp
	ActionDown
	ActionToggle
	ActionGo
	ActionDismiss
)

func (a Action) String() string {
	switch a {
	case ActionQuit:
		return "quit"
	case ActionFocusNext:
		return "focus_next"
	case ActionFocusPrev:
		return "focus_prev"
	case ActionUp:
		return "up"
	case ActionDown:
		return "down"
	case ActionToggle:
		return "toggle"
	case ActionGo:
		return "go"
	case ActionDismiss:
		return "dismiss"
	default:
		return "none"
	}
}

// ActionFor maps a termui key ID to an action. While an alert is shown the
// only accepted keys are the ones dismissing it.
func ActionFor(key string, alerting bool) Action {
	if alerting {
		switch key {
		case "<Enter>", "<Escape>":
			return ActionDismiss
		}
		return ActionNone
	}

	switch key {
	case "q", "<C-c>":
		return ActionQuit
	case "<Tab>", "<Right>", "l":
		return ActionFocusNext
	// termbox reports no Shift-Tab, Left is its stand-in.
	case "<Left>", "h":
		return ActionFocusPrev
	case "<Up>", "k":
		return ActionUp
	case "<Down>", "j":
		return ActionDown
	case "<Space>":
		return ActionToggle
	case "<Enter>", "g":
		return ActionGo
	}
	return ActionNone
}
