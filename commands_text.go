package main

import (
	"fmt"
	"strings"
	"time"

	"devopsbot/internal/alerts"
	"devopsbot/internal/format"
	"devopsbot/internal/model"
)

const metricsUnavailableText = "⚠️ Metrics are unavailable right now. Try again shortly."

func getStartText(userID int64) string {
	return fmt.Sprintf("👋 Hello! Access granted.\nYour ID: %d\nUse /status to check server health.", userID)
}

func getHelpText(host string) string {
	return "🤖 *Available commands:*\n\n" +
		"🔹 /start - Check access\n" +
		"🔹 /help - Show this message\n" +
		"🔹 /status - Server health summary\n" +
		"🔹 /cpu - CPU usage\n" +
		"🔹 /ram - Memory usage\n" +
		"🔹 /disk - Disk usage\n" +
		"🔹 /uptime - Server uptime\n" +
		"🔹 /alerts - Active alerts\n" +
		"🔹 /containers - List containers\n" +
		"🔹 /tail <host> <container> - Stream container logs\n" +
		"🔹 /stoptail - Stop streaming logs\n\n" +
		fmt.Sprintf("💡 Prefix any command with a host name to address one server, e.g. `/status %s`.", host)
}

func getStatusText(h alerts.Header, s model.MetricSample) string {
	var b strings.Builder
	if line := h.String(); line != "" {
		b.WriteString(line + "\n")
	}
	b.WriteString("📊 *Server Status*\n\n")
	b.WriteString(fmt.Sprintf("🖥 CPU: %.1f%%\n", s.CPUPercent))
	b.WriteString(fmt.Sprintf("⚖ Load: %.2f / %.2f / %.2f\n", s.Load[0], s.Load[1], s.Load[2]))
	b.WriteString(fmt.Sprintf("🧠 RAM: %.2fGB / %.2fGB (%.1f%%)\n", s.RAM.UsedGB, s.RAM.TotalGB, s.RAM.Percent))
	b.WriteString(fmt.Sprintf("💾 Disk: %.2fGB / %.2fGB (%.1f%%)\n", s.Disk.UsedGB, s.Disk.TotalGB, s.Disk.Percent))
	b.WriteString(fmt.Sprintf("⏳ Uptime: %s", format.FormatUptime(s.Uptime)))
	return b.String()
}

// getBotFooter reports the bot process itself, not the host.
func getBotFooter(up time.Duration, tails int) string {
	return fmt.Sprintf("🤖 Bot up %s, %d active tail(s)", format.FormatDuration(up), tails)
}

func getCPUText(s model.MetricSample) string {
	return fmt.Sprintf("🖥 CPU Usage: %.1f%%", s.CPUPercent)
}

func getRAMText(s model.MetricSample) string {
	return fmt.Sprintf("🧠 RAM: %.1f%% (%.2fGB used)", s.RAM.Percent, s.RAM.UsedGB)
}

func getDiskText(s model.MetricSample) string {
	return fmt.Sprintf("💾 Disk: %.1f%% (%.2fGB used)", s.Disk.Percent, s.Disk.UsedGB)
}

func getUptimeText(s model.MetricSample) string {
	return "⏳ Server Uptime: " + format.FormatUptime(s.Uptime)
}

func getAlertsText(h alerts.Header, st alerts.Status) string {
	text, ok := alerts.Render(h, st.Alerts)
	if !ok {
		return "✅ No active alerts at the moment."
	}
	return "🚨 *Active Alerts Detected:*\n\n" + text
}

func getContainersText(host string, containers []model.ContainerInfo) string {
	if len(containers) == 0 {
		return fmt.Sprintf("🐳 No containers found on %s.", host)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("🐳 *Containers on %s*\n\n", host))
	running := 0
	for _, c := range containers {
		icon := "⏸"
		if c.Running {
			icon = "▶️"
			running++
		}
		b.WriteString(fmt.Sprintf("%s `%s` %s\n", icon, format.Truncate(c.Name, 32), c.State))
	}
	b.WriteString(fmt.Sprintf("\n_%d running, %d stopped_", running, len(containers)-running))
	return b.String()
}
