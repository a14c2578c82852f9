package main

import (
	"fmt"
	"strings"

	"devopsbot/internal/alerts"
	"devopsbot/internal/format"

	"github.com/charmbracelet/lipgloss"
)

// ANSI palette so the output follows the terminal theme.
const (
	colorSuccess lipgloss.Color = "2"
	colorError   lipgloss.Color = "1"
	colorWarning lipgloss.Color = "3"
	colorInfo    lipgloss.Color = "6"
	colorMuted   lipgloss.Color = "8"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorInfo)
	labelStyle = lipgloss.NewStyle().Foreground(colorMuted).Width(8)
	okStyle    = lipgloss.NewStyle().Foreground(colorSuccess)
	warnStyle  = lipgloss.NewStyle().Foreground(colorWarning)
	alertStyle = lipgloss.NewStyle().Foreground(colorError).Bold(true)
)

// percentStyle colours a gauge green, yellow within ten points of the
// threshold, red above it.
func percentStyle(v, threshold float64) lipgloss.Style {
	switch {
	case v > threshold:
		return alertStyle
	case v > threshold-10:
		return warnStyle
	default:
		return okStyle
	}
}

func renderTerminalStatus(h alerts.Header, st alerts.Status) string {
	s := st.Sample
	var b strings.Builder

	title := h.Host
	if h.IP != "" {
		title = fmt.Sprintf("%s (%s)", h.Host, h.IP)
	}
	b.WriteString(titleStyle.Render(title) + "\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + " " + value + "\n")
	}
	gauge := func(v, threshold float64) string {
		return percentStyle(v, threshold).Render(fmt.Sprintf("%s %5.1f%%", format.MakeProgressBar(v), v))
	}

	row("CPU", gauge(s.CPUPercent, alerts.CPUThreshold))
	row("RAM", gauge(s.RAM.Percent, alerts.RAMThreshold)+fmt.Sprintf("  %.2f / %.2f GB", s.RAM.UsedGB, s.RAM.TotalGB))
	row("Disk", gauge(s.Disk.Percent, alerts.DiskThreshold)+fmt.Sprintf("  %.2f / %.2f GB", s.Disk.UsedGB, s.Disk.TotalGB))
	row("Load", fmt.Sprintf("%.2f / %.2f / %.2f", s.Load[0], s.Load[1], s.Load[2]))
	row("Uptime", format.FormatUptime(s.Uptime))
	row("Anomaly", fmt.Sprintf("%s (%d samples)", st.Anomaly.Status, st.Anomaly.Samples))

	b.WriteString("\n")
	if len(st.Alerts) == 0 {
		b.WriteString(okStyle.Render("No active alerts"))
	} else {
		for i, a := range st.Alerts {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(alertStyle.Render(a.Message))
		}
	}
	b.WriteString("\n")
	return b.String()
}
