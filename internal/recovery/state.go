package recovery

import (
	"fmt"
	"strings"
)

// QuitState is a step of the quit and restart flows.
type QuitState string

const (
	Running      QuitState = "RUNNING"
	Quitting     QuitState = "QUITTING"
	Vanished     QuitState = "VANISHED"
	StillPresent QuitState = "STILL_PRESENT"
	Escalating   QuitState = "ESCALATING"
	QuitComplete QuitState = "QUIT_COMPLETE"
	Relaunching  QuitState = "RELAUNCHING"
	Restored     QuitState = "RESTORED"
	Failed       QuitState = "FAILED"
)

// CrashState is the outcome of crash-reporter dismissal.
type CrashState string

const (
	CrashUnknown     CrashState = "UNKNOWN"
	CrashAbsent      CrashState = "ABSENT"
	CrashPresent     CrashState = "PRESENT"
	CrashDismissed   CrashState = "DISMISSED"
	CrashForceClosed CrashState = "FORCE_CLOSED"
	CrashStuck       CrashState = "STUCK"
)

// Report describes one run of a recovery flow.
type Report struct {
	States      []QuitState `json:"states" yaml:"states"`
	Escalations int         `json:"escalations" yaml:"escalations"`
	Crash       CrashState  `json:"crash" yaml:"crash"`
}

func (r *Report) enter(s QuitState) {
	r.States = append(r.States, s)
}

// Final is the last state reached, or Running for an empty report.
func (r Report) Final() QuitState {
	if len(r.States) == 0 {
		return Running
	}
	return r.States[len(r.States)-1]
}

func (r Report) String() string {
	parts := make([]string, len(r.States))
	for i, s := range r.States {
		parts[i] = string(s)
	}
	return fmt.Sprintf("%s (escalations=%d, crash=%s)", strings.Join(parts, " -> "), r.Escalations, r.Crash)
}
