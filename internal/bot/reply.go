package bot

// Embed colors, matching the palette the community is used to.
const (
	ColorSuccess = 0x00FF00
	ColorError   = 0xFF0000
	ColorWarning = 0xFFCC00
	ColorGold    = 0xFFD700
)

// Field is one labeled value in a reply.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Reply is a transport-agnostic message back to the originating
// channel. The Discord transport renders it as an embed; the console
// renders it as styled text.
type Reply struct {
	Title       string
	Description string
	Color       int
	Fields      []Field
}

// Request carries the parsed pieces of one command invocation.
type Request struct {
	UserID string
	Args   []string
}
