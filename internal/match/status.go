package match

// StatusLabel is the notifiable lifecycle stage of a match.
type StatusLabel int

const (
	StatusNone StatusLabel = iota
	StatusLive
	StatusHalftime
	StatusExtraTime
	StatusFulltime
)

func (l StatusLabel) String() string {
	switch l {
	case StatusLive:
		return "LIVE"
	case StatusHalftime:
		return "HALFTIME"
	case StatusExtraTime:
		return "EXTRA_TIME"
	case StatusFulltime:
		return "FULLTIME"
	default:
		return "NONE"
	}
}

var statusLabels = map[string]StatusLabel{
	"LIVE":               StatusLive,
	"IN_PLAY":            StatusLive,
	"PAUSED":             StatusHalftime,
	"IN_PLAY_EXTRA_TIME": StatusExtraTime,
	"EXTRA_TIME":         StatusExtraTime,
	"FINISHED":           StatusFulltime,
}

// DeriveStatusLabel maps the raw status code. Unknown codes map to StatusNone.
func DeriveStatusLabel(m Match) StatusLabel {
	return statusLabels[m.Status]
}
