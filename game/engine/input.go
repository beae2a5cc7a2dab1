package engine

// Action is what a key does once bound to a player
type Action int

const (
	ActionMove Action = iota + 1
	ActionFire
)

// String returns the action name
func (a Action) String() string {
	switch a {
	case ActionMove:
		return ActionNameMove
	case ActionFire:
		return ActionNameFire
	default:
		return "unknown"
	}
}

// MarshalText encodes the action by name
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText decodes an action name; unknown names decode to zero
func (a *Action) UnmarshalText(text []byte) error {
	switch string(text) {
	case ActionNameMove:
		*a = ActionMove
	case ActionNameFire:
		*a = ActionFire
	default:
		*a = 0
	}
	return nil
}

// Binding maps a key to a player action
type Binding struct {
	Player    PlayerID  `json:"player"`
	Action    Action    `json:"action"`
	Direction Direction `json:"direction,omitempty"`
}

// Key identifiers follow the browser KeyboardEvent.key values.
const (
	KeySpace      = " "
	KeyEnter      = "Enter"
	KeyArrowUp    = "ArrowUp"
	KeyArrowDown  = "ArrowDown"
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
)

// KeyBindings is the static dispatch table for the two disjoint key sets
var KeyBindings = map[string]Binding{
	"w":      {Player: Player1, Action: ActionMove, Direction: Up},
	"s":      {Player: Player1, Action: ActionMove, Direction: Down},
	"a":      {Player: Player1, Action: ActionMove, Direction: Left},
	"d":      {Player: Player1, Action: ActionMove, Direction: Right},
	KeySpace: {Player: Player1, Action: ActionFire},

	KeyArrowUp:    {Player: Player2, Action: ActionMove, Direction: Up},
	KeyArrowDown:  {Player: Player2, Action: ActionMove, Direction: Down},
	KeyArrowLeft:  {Player: Player2, Action: ActionMove, Direction: Left},
	KeyArrowRight: {Player: Player2, Action: ActionMove, Direction: Right},
	KeyEnter:      {Player: Player2, Action: ActionFire},
}

// LookupKey returns the binding for a key identifier
func LookupKey(key string) (Binding, bool) {
	b, ok := KeyBindings[key]
	return b, ok
}

// Apply runs the bound action against the state and reports whether it took effect
func (b Binding) Apply(gs *GameState) bool {
	switch b.Action {
	case ActionMove:
		return gs.MoveTank(b.Player, b.Direction)
	case ActionFire:
		return gs.Fire(b.Player)
	default:
		return false
	}
}
