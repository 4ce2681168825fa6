package play

import "github.com/abhisek/parsons/internal/tutor"

// explainDoneMsg carries the tutor's answer back to the screen.
type explainDoneMsg struct {
	explanation *tutor.Explanation
	err         error
}
