package ui

import (
	"fmt"
	"io"
	"strings"

	"hdxtunes/internal/session"
	"hdxtunes/internal/tracks"
	"hdxtunes/pkg/spec"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var barChars = []rune(" ▁▂▃▄▅▆▇█")

const (
	spectrumRows = 10
	barWidth     = 2
	// Bars below this scaled value never fill a row; keeps silence flat.
	barFloor = 200.0
)

const keyHelp = "q: quit\nn: next\nb: back\np: play/pause\nr: restart song\na: add songs\ns: shuffle"

// View draws session frames onto a raw-mode terminal.
type View struct {
	out          io.Writer
	width        func() int
	defaultColor bool
}

// NewView renders to out. width reports the terminal width; nil means 120.
func NewView(out io.Writer, width func() int, defaultColor bool) *View {
	if width == nil {
		width = func() int { return 120 }
	}
	return &View{out: out, width: width, defaultColor: defaultColor}
}

func (v *View) Render(f session.Frame) error {
	screen := Compose(f, v.width(), v.defaultColor)
	// raw mode: \n tidak balik ke kolom 0
	screen = strings.ReplaceAll(screen, "\n", "\r\n")
	_, err := io.WriteString(v.out, "\033[H\033[2J"+screen)
	return err
}

// Compose lays out one frame: spectrum and now-playing on top, up-next and
// history below, status line last.
func Compose(f session.Frame, width int, defaultColor bool) string {
	color := TrackColor(f.Track.Name, defaultColor)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Foreground(color).
		Padding(0, 1)
	title := lipgloss.NewStyle().Bold(true).Foreground(color)

	bars := f.Bars
	if len(bars) == 0 {
		bars = make([]float64, spec.NumBars)
	}
	spectrum := box.Render(title.Render(spec.AppName) + "\n" + SpectrumRows(bars, spectrumRows))

	nowWidth := width - lipgloss.Width(spectrum) - 4
	if nowWidth < 20 {
		nowWidth = 20
	}
	now := box.Width(nowWidth).Render(title.Render("now-playing") + "\n" + nowPlaying(f, nowWidth-2))

	top := lipgloss.JoinHorizontal(lipgloss.Top, spectrum, now)

	half := width/2 - 4
	if half < 10 {
		half = 10
	}
	upNext := box.Width(half).Render(title.Render("up-next") + "\n" + list(f.UpNext, half-2))
	history := box.Width(half).Render(title.Render("history") + "\n" + list(f.History, half-2))
	bottom := lipgloss.JoinHorizontal(lipgloss.Top, upNext, history)

	out := lipgloss.JoinVertical(lipgloss.Left, top, bottom)
	if f.Message != "" {
		out += "\n" + lipgloss.NewStyle().Italic(true).Foreground(color).Render(f.Message)
	}
	return out
}

func nowPlaying(f session.Frame, width int) string {
	var b strings.Builder
	if f.Playing {
		name := f.Track.Name
		if f.Paused {
			name += " [paused]"
		}
		b.WriteString(runewidth.Truncate(name, width, "…"))
		if f.Tags != nil {
			if line := tagLine(*f.Tags); line != "" {
				b.WriteString("\n" + runewidth.Truncate(line, width, "…"))
			}
		}
	} else {
		b.WriteString("-")
	}
	b.WriteString("\n\n" + keyHelp)
	return b.String()
}

func tagLine(t tracks.Tags) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{t.Title, t.Artist, t.Album} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	line := strings.Join(parts, " - ")
	if t.Year > 0 {
		line = strings.TrimSpace(fmt.Sprintf("%s (%d)", line, t.Year))
	}
	return line
}

func list(names []string, width int) string {
	if len(names) == 0 {
		return ""
	}
	lines := make([]string, len(names))
	for i, n := range names {
		lines[i] = runewidth.Truncate(n, width, "…")
	}
	return strings.Join(lines, "\n")
}

// SpectrumRows draws bars as rows of block characters, top row first.
// Each bar is scaled as v*1000+10 and normalised to the loudest bar.
func SpectrumRows(bars []float64, height int) string {
	if height < 1 {
		height = 1
	}
	scaled := make([]float64, len(bars))
	peak := barFloor
	for i, v := range bars {
		scaled[i] = v*1000 + 10
		if scaled[i] > peak {
			peak = scaled[i]
		}
	}

	rows := make([]string, height)
	for row := 0; row < height; row++ {
		var line strings.Builder
		fromBottom := float64(height - 1 - row)
		for _, s := range scaled {
			level := s / peak * float64(height)
			idx := 0
			if level >= fromBottom+1 {
				idx = len(barChars) - 1
			} else if level > fromBottom {
				idx = int((level - fromBottom) * float64(len(barChars)-1))
			}
			line.WriteString(strings.Repeat(string(barChars[idx]), barWidth))
		}
		rows[row] = line.String()
	}
	return strings.Join(rows, "\n")
}
