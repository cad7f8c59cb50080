package notify

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogSink writes notifications to a logrus entry. Destructive ones are logged
// at warn level.
type LogSink struct {
	Log *logrus.Entry
}

func (s LogSink) Notify(n Notification) {
	if s.Log == nil {
		return
	}
	entry := s.Log.WithFields(logrus.Fields{
		"title":    n.Title,
		"severity": string(n.Severity),
	})
	if n.Severity == SeverityDestructive {
		entry.Warn(n.Description)
		return
	}
	entry.Info(n.Description)
}

// Runner executes an external command.
type Runner func(name string, args ...string) error

func execRunner(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// DesktopSink raises OS notifications through notify-send or osascript.
type DesktopSink struct {
	GOOS string
	Run  Runner
	Log  *logrus.Entry
}

func NewDesktopSink(log *logrus.Entry) DesktopSink {
	return DesktopSink{GOOS: runtime.GOOS, Run: execRunner, Log: log}
}

func (s DesktopSink) Notify(n Notification) {
	name, args, ok := desktopCommand(s.GOOS, n)
	if !ok || s.Run == nil {
		return
	}
	if err := s.Run(name, args...); err != nil && s.Log != nil {
		s.Log.WithError(err).WithField("command", name).Debug("desktop notification failed")
	}
}

func desktopCommand(goos string, n Notification) (string, []string, bool) {
	switch goos {
	case "linux":
		args := []string{n.Title, n.Description}
		if n.Severity == SeverityDestructive {
			args = append([]string{"--urgency=critical"}, args...)
		}
		return "notify-send", args, true
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Description), escapeAppleScript(n.Title))
		return "osascript", []string{"-e", script}, true
	default:
		return "", nil, false
	}
}

func escapeAppleScript(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
