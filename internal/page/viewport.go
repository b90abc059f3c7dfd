package page

// Bracket is a responsive width class
type Bracket int

const (
	Phone Bracket = iota
	Tablet
	Desktop
)

const (
	// PhoneMaxWidth and TabletMaxWidth are inclusive upper bounds
	PhoneMaxWidth  = 600
	TabletMaxWidth = 1024
)

// BracketFor classifies a viewport width
func BracketFor(width int) Bracket {
	switch {
	case width > TabletMaxWidth:
		return Desktop
	case width > PhoneMaxWidth:
		return Tablet
	default:
		return Phone
	}
}

func (b Bracket) String() string {
	switch b {
	case Desktop:
		return "desktop"
	case Tablet:
		return "tablet"
	default:
		return "phone"
	}
}
