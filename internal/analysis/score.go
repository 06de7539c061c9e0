package analysis

// ScoreStatus is the colour band a score is shown in.
type ScoreStatus string

const (
	StatusSuccess ScoreStatus = "success"
	StatusWarning ScoreStatus = "warning"
	StatusError   ScoreStatus = "error"
)

// StatusForScore maps a 0..10 score: 8 and up is success, 6 and 7 warning,
// anything lower error.
func StatusForScore(score int) ScoreStatus {
	switch {
	case score >= 8:
		return StatusSuccess
	case score >= 6:
		return StatusWarning
	default:
		return StatusError
	}
}
