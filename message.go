package chatshare

// Role identifies the author of a message.
type Role string

// Supported roles. A message always resolves to exactly one of these.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole maps a raw role value to a Role. Exactly "assistant" maps to
// RoleAssistant; anything else, including "system" and "tool", maps to
// RoleUser.
func ParseRole(s string) Role {
	if s == string(RoleAssistant) {
		return RoleAssistant
	}
	return RoleUser
}

// Other returns the opposite role.
func (r Role) Other() Role {
	if r == RoleAssistant {
		return RoleUser
	}
	return RoleAssistant
}

// RoleSignal records how a turn's role was determined.
type RoleSignal int

// RoleSignal values.
const (
	SignalDefault RoleSignal = iota
	SignalAttribute
	SignalJSONField
	SignalClassName
	SignalLabel
	SignalAlternation
)

// String returns the signal name used in logs.
func (s RoleSignal) String() string {
	switch s {
	case SignalAttribute:
		return "attribute"
	case SignalJSONField:
		return "json"
	case SignalClassName:
		return "class"
	case SignalLabel:
		return "label"
	case SignalAlternation:
		return "alternation"
	default:
		return "default"
	}
}

// Turn is a single message candidate emitted by a Strategy.
// Turns are converted to Messages once a strategy's result is accepted.
type Turn struct {
	Role   Role
	Text   string
	Signal RoleSignal
}

// Message is one normalized conversation message.
type Message struct {
	Role  Role   `json:"role"`
	Text  string `json:"text"`
	Index int    `json:"index"`
}

// Transcript is the outcome of a single extraction. Messages always come
// from exactly one strategy.
type Transcript struct {
	// ID correlates log lines for one extraction.
	ID string `json:"id"`

	SourceURL string `json:"sourceUrl,omitempty"`

	// Strategy is the name of the strategy that produced Messages.
	// Empty when no strategy produced anything.
	Strategy string `json:"strategy,omitempty"`

	// Platform is the chat product that produced the page, if recognized.
	Platform Platform `json:"platform,omitempty"`

	// Rendered is true when Messages came from a browser-rendered document.
	Rendered bool `json:"rendered,omitempty"`

	Messages []Message `json:"items"`

	// Warnings holds non-fatal problems such as EDECODEDEGRADED.
	Warnings []error `json:"-"`
}

// Empty reports whether no conversation was detected.
func (t *Transcript) Empty() bool {
	return t == nil || len(t.Messages) == 0
}

// NewMessages converts accepted turns into messages indexed 1..N.
// Turns with empty text are skipped and do not consume an index.
func NewMessages(turns []Turn) []Message {
	msgs := make([]Message, 0, len(turns))
	for _, t := range turns {
		if t.Text == "" {
			continue
		}
		msgs = append(msgs, Message{
			Role:  t.Role,
			Text:  t.Text,
			Index: len(msgs) + 1,
		})
	}
	return msgs
}
