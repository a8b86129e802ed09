package client

// Action is what a route should do for the current session.
type Action int

const (
	ActionRender Action = iota
	ActionRedirect
	ActionLoading
	ActionNotFound
)

func (a Action) String() string {
	switch a {
	case ActionRender:
		return "render"
	case ActionRedirect:
		return "redirect"
	case ActionLoading:
		return "loading"
	default:
		return "not found"
	}
}

// Decision is the outcome of Guard.
type Decision struct {
	Action     Action
	RedirectTo string
}

type access int

const (
	accessPublic access = iota
	accessAuthenticated
	accessAnonymous
)

var routes = map[string]access{
	"/":         accessAuthenticated,
	"/profile":  accessAuthenticated,
	"/login":    accessAnonymous,
	"/signup":   accessAnonymous,
	"/settings": accessPublic,
}

// Guard decides how path renders for state. Nothing renders while the
// session is still being resolved.
func Guard(path string, state State) Decision {
	rule, ok := routes[path]
	if !ok {
		return Decision{Action: ActionNotFound}
	}

	status := state.Status()
	if status == StatusPending {
		return Decision{Action: ActionLoading}
	}

	switch {
	case rule == accessAuthenticated && status != StatusAuthenticated:
		return Decision{Action: ActionRedirect, RedirectTo: "/login"}
	case rule == accessAnonymous && status == StatusAuthenticated:
		return Decision{Action: ActionRedirect, RedirectTo: "/"}
	}
	return Decision{Action: ActionRender}
}
