package viewer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/luki/tempwatch/internal/temperature"
)

type fakeHistory struct {
	series temperature.Series
	err    error
	start  time.Time
	end    time.Time
	calls  int
}

func (f *fakeHistory) FetchHistory(_ context.Context, start, end time.Time) (temperature.Series, error) {
	f.calls++
	f.start, f.end = start, end
	return f.series, f.err
}

var base = time.Date(2026, 2, 21, 14, 0, 0, 0, time.UTC)

// newestFirst builds n readings one minute apart, newest first.
func newestFirst(n int) temperature.Series {
	s := make(temperature.Series, n)
	for i := range s {
		s[i] = temperature.Reading{
			Celsius:     20 + float64(n-1-i)*0.1,
			CollectedAt: base.Add(time.Duration(n-1-i) * time.Minute),
		}
	}
	return s
}

func loaded(t *testing.T, src *fakeHistory) Model {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := New(context.Background(), src, base.Add(-time.Hour), base.Add(2*time.Hour), 25.0, temperature.Celsius, logger, time.UTC)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)
	next, _ = m.Update(m.Init()())
	return next.(Model)
}

func press(m Model, k string) Model {
	var msg tea.KeyMsg
	switch k {
	case "home":
		msg = tea.KeyMsg{Type: tea.KeyHome}
	case "end":
		msg = tea.KeyMsg{Type: tea.KeyEnd}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestLoadRequestsWindow(t *testing.T) {
	src := &fakeHistory{series: newestFirst(5)}
	m := loaded(t, src)

	if src.calls != 1 {
		t.Fatalf("fetch calls: got %d, want 1", src.calls)
	}
	if !src.start.Equal(base.Add(-time.Hour)) || !src.end.Equal(base.Add(2*time.Hour)) {
		t.Errorf("window: got %v..%v", src.start, src.end)
	}
	if m.cursor != 4 {
		t.Errorf("cursor should start on the newest reading: got %d, want 4", m.cursor)
	}

	out := m.View()
	if !strings.Contains(out, "14:04:00") || !strings.Contains(out, "20.4") {
		t.Errorf("cursor info should show the newest reading:\n%s", out)
	}
	if !strings.Contains(out, "(5 readings)") {
		t.Errorf("title should count readings:\n%s", out)
	}
	t.Logf("\n%s", out)
}

func TestScrub(t *testing.T) {
	m := loaded(t, &fakeHistory{series: newestFirst(30)})

	tests := []struct {
		key  string
		want int
	}{
		{"h", 28},
		{"H", 18},
		{"l", 19},
		{"home", 0},
		{"h", 0},
		{"L", 10},
		{"end", 29},
		{"l", 29},
	}
	for _, tt := range tests {
		m = press(m, tt.key)
		if m.cursor != tt.want {
			t.Errorf("after %q: cursor got %d, want %d", tt.key, m.cursor, tt.want)
		}
	}

	m = press(m, "home")
	if out := m.View(); !strings.Contains(out, "14:00:00") || !strings.Contains(out, "1/30") {
		t.Errorf("home should show the oldest reading:\n%s", out)
	}
}

func TestHourJump(t *testing.T) {
	m := loaded(t, &fakeHistory{series: newestFirst(150)})

	m = press(m, "[")
	if m.cursor != 89 {
		t.Errorf("[ from newest: cursor got %d, want 89", m.cursor)
	}
	m = press(m, "[")
	m = press(m, "[")
	if m.cursor != 0 {
		t.Errorf("[ past the start: cursor got %d, want 0", m.cursor)
	}
	m = press(m, "]")
	if m.cursor != 60 {
		t.Errorf("] from oldest: cursor got %d, want 60", m.cursor)
	}
}

func TestToggleUnit(t *testing.T) {
	m := loaded(t, &fakeHistory{series: temperature.Series{{Celsius: 23.4, CollectedAt: base}}})

	m = press(m, "u")
	out := m.View()
	if !strings.Contains(out, "74.1") || !strings.Contains(out, "Threshold (77.0°F)") {
		t.Errorf("Fahrenheit view:\n%s", out)
	}

	m = press(m, "u")
	if out := m.View(); !strings.Contains(out, "23.4") || !strings.Contains(out, "Threshold (25°C)") {
		t.Errorf("Celsius view:\n%s", out)
	}
}

func TestEmptyAndError(t *testing.T) {
	m := loaded(t, &fakeHistory{})
	if out := m.View(); !strings.Contains(out, "No data in this window.") {
		t.Errorf("empty window:\n%s", out)
	}
	m = press(m, "l")
	if m.cursor != 0 {
		t.Errorf("cursor on empty series: got %d, want 0", m.cursor)
	}

	m = loaded(t, &fakeHistory{err: errors.New("service unavailable")})
	if out := m.View(); !strings.Contains(out, "ERROR: service unavailable") {
		t.Errorf("error view:\n%s", out)
	}
}

func TestReload(t *testing.T) {
	src := &fakeHistory{series: newestFirst(3)}
	m := loaded(t, src)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("reload should return a fetch command")
	}
	if out := m.View(); !strings.Contains(out, "Loading history...") {
		t.Errorf("expected loading state:\n%s", out)
	}

	src.series = newestFirst(6)
	next, _ = m.Update(cmd())
	m = next.(Model)
	if src.calls != 2 || len(m.series) != 6 || m.cursor != 5 {
		t.Errorf("after reload: calls=%d readings=%d cursor=%d", src.calls, len(m.series), m.cursor)
	}
}

func TestQuit(t *testing.T) {
	m := loaded(t, &fakeHistory{series: newestFirst(2)})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
