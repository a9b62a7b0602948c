package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/codebeauty/scanview/internal/progress"
)

const barWidth = 30

func (m Model) View() string {
	if m.Err != nil {
		return StyleError.Render("  Error: "+m.Err.Error()) + "\n"
	}
	if m.quitting && !m.coord.Done() {
		return StyleMuted.Render("  Scan cancelled.") + "\n"
	}

	switch m.coord.State() {
	case progress.StateGating:
		return m.viewGating()
	case progress.StateRunning:
		return m.viewScanning()
	case progress.StateComplete:
		return m.viewDone()
	}
	return ""
}

func (m Model) viewGating() string {
	var b strings.Builder
	elapsed := time.Since(m.startedAt).Round(time.Second)
	b.WriteString(fmt.Sprintf("\n  %s  %s\n\n", StyleTitle.Render("Preparing scan"), StyleMuted.Render(elapsed.String())))
	b.WriteString(fmt.Sprintf("  %s %s\n", m.spinner.View(), m.coord.Stages()[0].Label))
	b.WriteString("\n  " + StyleMuted.Render("ctrl+c to cancel") + "\n")
	return b.String()
}

func (m Model) viewScanning() string {
	var b strings.Builder
	snap := m.coord.Snapshot()
	stages := m.coord.Stages()

	elapsed := time.Since(m.startedAt).Round(time.Second)
	b.WriteString(fmt.Sprintf("\n  %s  %s\n\n", StyleTitle.Render("Scanning"), StyleMuted.Render(elapsed.String())))
	b.WriteString(fmt.Sprintf("  %s %s\n\n", renderBar(snap.Percent), StyleBold.Render(fmt.Sprintf("%3d%%", snap.Percent))))

	maxW := 0
	for _, s := range stages {
		if w := lipgloss.Width(s.Label); w > maxW {
			maxW = w
		}
	}

	for i, s := range stages {
		st := snap.Stages[i]
		label := s.Label + strings.Repeat(" ", maxW-lipgloss.Width(s.Label))

		icon := IconPending
		switch {
		case st.Done:
			icon = IconDone
		case i > 0 && i == snap.Focus:
			icon = IconFocus
		}

		line := fmt.Sprintf("  %s %s", icon, label)
		if s.Weight != "" {
			line += " " + Badge(s.Weight)
		}
		if i > 0 && st.Revealed > 0 && !st.Done {
			line += "  " + StyleMuted.Render(s.Subtitles[st.Revealed-1])
		}
		b.WriteString(line + "\n")
	}

	done := 0
	for _, st := range snap.Stages {
		if st.Done {
			done++
		}
	}
	b.WriteString(fmt.Sprintf("\n  %s\n", StyleMuted.Render(fmt.Sprintf("%d/%d stages complete", done, len(stages)))))
	return b.String()
}

func (m Model) viewDone() string {
	var b strings.Builder
	elapsed := time.Since(m.startedAt).Round(time.Second)
	b.WriteString(fmt.Sprintf("\n  %s %s\n\n", IconDone, StyleTitle.Render("Scan complete")))
	b.WriteString(fmt.Sprintf("  %s %s\n", StyleMuted.Render("duration"), elapsed.String()))
	if m.recordPath != "" {
		b.WriteString(fmt.Sprintf("  %s %s\n", StyleMuted.Render("record  "), m.recordPath))
	}
	if m.recordErr != nil {
		b.WriteString(fmt.Sprintf("  %s %v\n", StyleError.Render("record  "), m.recordErr))
	}
	b.WriteString("\n  " + StyleMuted.Render("q to quit") + "\n")
	return b.String()
}

func renderBar(percent int) string {
	filled := barWidth * percent / 100
	bar := StylePrimary.Render(strings.Repeat("█", filled)) +
		StyleMuted.Render(strings.Repeat("░", barWidth-filled))
	return bar
}
