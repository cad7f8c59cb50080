package notify

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedKeepsNewestWithinLimit(t *testing.T) {
	feed := NewFeed(2)
	feed.Notify(Notification{Title: "one"})
	feed.Notify(Notification{Title: "two", Severity: SeverityDestructive})
	feed.Notify(Notification{Title: "three"})

	recent := feed.Recent(0)
	require.Len(t, recent, 2)
	assert.Equal(t, "three", recent[0].Title)
	assert.Equal(t, "two", recent[1].Title)
	assert.Equal(t, SeverityDefault, recent[0].Severity)
	assert.Equal(t, uint64(3), feed.Total())

	latest, ok := feed.Latest()
	require.True(t, ok)
	assert.Equal(t, "three", latest.Title)
	assert.Len(t, feed.Recent(1), 1)
}

func TestFanoutSkipsNilSinks(t *testing.T) {
	var got []string
	sink := SinkFunc(func(n Notification) { got = append(got, n.Title) })
	Fanout{sink, nil, sink}.Notify(Notification{Title: "x"})
	assert.Equal(t, []string{"x", "x"}, got)
}

func TestLogSinkLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})
	sink := LogSink{Log: logrus.NewEntry(logger)}

	sink.Notify(Notification{Title: "Cooldown active", Description: "wait 50s", Severity: SeverityDestructive})
	assert.Contains(t, buf.String(), `"level":"warning"`)
	assert.Contains(t, buf.String(), `"title":"Cooldown active"`)

	buf.Reset()
	sink.Notify(Notification{Title: "XP gained", Description: "+6 XP", Severity: SeverityDefault})
	assert.Contains(t, buf.String(), `"level":"info"`)
}

func TestDesktopSinkCommands(t *testing.T) {
	var name string
	var args []string
	run := func(n string, a ...string) error {
		name, args = n, a
		return errors.New("missing binary")
	}

	DesktopSink{GOOS: "linux", Run: run}.Notify(Notification{Title: "Rejected", Description: "no", Severity: SeverityDestructive})
	assert.Equal(t, "notify-send", name)
	assert.Equal(t, []string{"--urgency=critical", "Rejected", "no"}, args)

	DesktopSink{GOOS: "darwin", Run: run}.Notify(Notification{Title: `Say "hi"`, Description: "ok"})
	assert.Equal(t, "osascript", name)
	assert.Equal(t, `display notification "ok" with title "Say \"hi\""`, args[1])

	name = ""
	DesktopSink{GOOS: "plan9", Run: run}.Notify(Notification{Title: "x"})
	assert.Empty(t, name)
}
