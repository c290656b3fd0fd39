package halfblock

// Kind identifies the type of a recognised command.
type Kind int

const (
	KindHideCursor Kind = iota + 1
	KindShowCursor
	KindClearScreen
	KindResetAttributes
	KindPosition
	KindBackground
	KindForeground
)

func (k Kind) String() string {
	switch k {
	case KindHideCursor:
		return "hide cursor"
	case KindShowCursor:
		return "show cursor"
	case KindClearScreen:
		return "clear screen"
	case KindResetAttributes:
		return "reset attributes"
	case KindPosition:
		return "cursor position"
	case KindBackground:
		return "background"
	case KindForeground:
		return "foreground"
	default:
		return "unknown"
	}
}
