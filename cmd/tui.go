// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Thermoquad/sextant/internal/export"
	"github.com/Thermoquad/sextant/pkg/nmea"
)

// skyTimeout is how long a satellite stays listed after its last GSV report
const skyTimeout = 10 * time.Second

// Error log entry
type errorLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool // true for errors, false for warnings
}

type skyKey struct {
	talker nmea.Talker
	prn    uint8
}

type skyEntry struct {
	info     nmea.SatelliteInfo
	lastSeen time.Time
}

// TUI model
type model struct {
	connInfo      string
	statsInterval time.Duration
	showAll       bool
	stats         *nmea.Statistics
	latest        *nmea.Latest
	sky           map[skyKey]skyEntry
	skyTable      table.Model
	errorLog      []errorLogEntry
	maxLogEntries int
	synchronized  bool
	closed        bool
	closeErr      error
	width         int
	height        int
	quitting      bool
}

// Messages
type tickMsg time.Time

func initialModel(connInfo string, statsInterval time.Duration, showAll bool) model {
	columns := []table.Column{
		{Title: "System", Width: 8},
		{Title: "PRN", Width: 4},
		{Title: "Elev", Width: 5},
		{Title: "Az", Width: 5},
		{Title: "SNR", Width: 4},
	}

	return model{
		connInfo:      connInfo,
		statsInterval: statsInterval,
		showAll:       showAll,
		stats:         nmea.NewStatistics(),
		latest:        &nmea.Latest{},
		sky:           make(map[skyKey]skyEntry),
		skyTable:      table.New(table.WithColumns(columns), table.WithHeight(8)),
		errorLog:      make([]errorLogEntry, 0),
		maxLogEntries: 100,
		width:         80,
		height:        24,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		tea.EnterAltScreen,
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			m.stats.Reset()
			m.addLogEntry("Statistics reset", false)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.stats.CalculateRates()
		m.pruneSky(time.Time(msg))
		return m, tickCmd()

	case streamClosedMsg:
		m.closed = true
		m.closeErr = msg.err
		if msg.err != nil && !isEndOfInput(msg.err) {
			m.addLogEntry(fmt.Sprintf("Connection error: %v", msg.err), true)
		} else {
			m.addLogEntry("End of input", false)
		}

	case eventMsg:
		m.handleEvent(sentenceEvent(msg))
	}

	return m, nil
}

func (m *model) handleEvent(ev sentenceEvent) {
	m.stats.UpdateScan(ev.scan)

	if ev.scan.Status == nmea.ScanTooLong {
		m.addLogEntry(fmt.Sprintf("Sentence exceeds %d bytes", nmea.MaxSentenceSize), true)
		return
	}
	if !ev.complete() {
		return
	}

	if !m.synchronized {
		m.synchronized = true
		if m.stats.NoiseBytes > 0 {
			m.addLogEntry(fmt.Sprintf("Synchronized after skipping %d bytes", m.stats.NoiseBytes), false)
		} else {
			m.addLogEntry("Synchronized", false)
		}
	}

	m.stats.Update(ev.msg, ev.err, ev.verrs)

	switch {
	case ev.err != nil:
		m.addLogEntry(nmea.FormatError(ev.err), true)
	case ev.msg == nil:
		if m.showAll {
			m.addLogEntry(fmt.Sprintf("Unsupported: %.20s", ev.raw), false)
		}
	default:
		m.latest.Store(ev.msg)
		if gsv, ok := ev.msg.(*nmea.GSV); ok {
			m.updateSky(gsv, ev.at)
		}

		kind := ev.msg.Kind().String()
		for _, err := range ev.verrs {
			m.addLogEntry(fmt.Sprintf("%s: %s", kind, err.Message), true)
		}
		if len(ev.verrs) == 0 && m.showAll {
			m.addLogEntry(fmt.Sprintf("%s %s (valid)", nmea.FormatTalker(ev.msg.MessageHeader().Talker), kind), false)
		}
	}
}

func (m *model) addLogEntry(message string, isError bool) {
	entry := errorLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	}
	m.errorLog = append(m.errorLog, entry)

	// Keep only last N entries
	if len(m.errorLog) > m.maxLogEntries {
		m.errorLog = m.errorLog[len(m.errorLog)-m.maxLogEntries:]
	}
}

func (m *model) updateSky(gsv *nmea.GSV, at time.Time) {
	talker := gsv.MessageHeader().Talker
	for _, slot := range gsv.Satellites {
		info, ok := slot.Get()
		if !ok {
			continue
		}
		prn, ok := info.PRN.Get()
		if !ok {
			continue
		}
		m.sky[skyKey{talker, prn}] = skyEntry{info: info, lastSeen: at}
	}
	m.refreshSkyTable()
}

func (m *model) pruneSky(now time.Time) {
	changed := false
	for k, e := range m.sky {
		if now.Sub(e.lastSeen) > skyTimeout {
			delete(m.sky, k)
			changed = true
		}
	}
	if changed {
		m.refreshSkyTable()
	}
}

func (m *model) refreshSkyTable() {
	keys := make([]skyKey, 0, len(m.sky))
	for k := range m.sky {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].talker != keys[j].talker {
			return keys[i].talker < keys[j].talker
		}
		return keys[i].prn < keys[j].prn
	})

	rows := make([]table.Row, 0, len(keys))
	for _, k := range keys {
		info := m.sky[k].info
		rows = append(rows, table.Row{
			nmea.FormatTalker(k.talker),
			fmt.Sprintf("%d", k.prn),
			optString(info.Elevation),
			optString(info.Azimuth),
			optString(info.SNR),
		})
	}
	m.skyTable.SetRows(rows)
}

func optString[T uint8 | uint16](o nmea.Option[T]) string {
	if v, ok := o.Get(); ok {
		return fmt.Sprintf("%d", v)
	}
	return "-"
}

// fixSummary renders the latest position from GGA, falling back to RMC
func (m *model) fixSummary() []string {
	var lines []string

	if gga, ok := m.latest.GGA(); ok {
		lat := export.Degrees(gga.Latitude, gga.LatHemi)
		lon := export.Degrees(gga.Longitude, gga.LonHemi)
		lines = append(lines, fmt.Sprintf("Position: %.6f, %.6f", lat, lon))
		if t, ok := nmea.ParseUTCTime(gga.Time); ok {
			lines = append(lines, fmt.Sprintf("UTC: %s", t))
		}
		lines = append(lines, fmt.Sprintf("Quality: %d  Satellites: %s  HDOP: %s",
			gga.FixQuality, optString(gga.Satellites), formatFloat(gga.HDOP)))
		if alt, ok := gga.Altitude.Get(); ok {
			lines = append(lines, fmt.Sprintf("Altitude: %.1f m", alt))
		}
	} else if rmc, ok := m.latest.RMC(); ok {
		lat := export.Degrees(rmc.Latitude, rmc.LatHemi)
		lon := export.Degrees(rmc.Longitude, rmc.LonHemi)
		lines = append(lines, fmt.Sprintf("Position: %.6f, %.6f (status %c)", lat, lon, rmc.Status))
	}

	if rmc, ok := m.latest.RMC(); ok {
		lines = append(lines, fmt.Sprintf("Speed: %.1f kn  Track: %.1f°", rmc.SpeedKnots, rmc.TrackAngle))
	}
	return lines
}

func formatFloat(o nmea.Option[float32]) string {
	if v, ok := o.Get(); ok {
		return fmt.Sprintf("%.1f", v)
	}
	return "-"
}

func (m model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	statsLabelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	statsValueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	// Header
	var s strings.Builder
	s.WriteString(titleStyle.Render("SEXTANT - ERROR DETECTION"))
	s.WriteString("\n")
	mode := "Errors only"
	if m.showAll {
		mode = "All sentences"
	}
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | Mode: %s | 'r' reset, 'q' quit", m.connInfo, mode)))
	s.WriteString("\n\n")

	// Sync status
	switch {
	case m.closed:
		s.WriteString(warningStyle.Render("■ Input closed"))
	case !m.synchronized:
		s.WriteString(warningStyle.Render("⏳ Waiting for first sentence..."))
	default:
		s.WriteString(statsValueStyle.Render("✓ Synchronized"))
	}
	if m.stats.NoiseBytes > 0 {
		s.WriteString(headerStyle.Render(fmt.Sprintf(" (%d noise bytes)", m.stats.NoiseBytes)))
	}
	s.WriteString("\n\n")

	// Statistics
	m.stats.CalculateRates()
	var validPercent, errorPercent float64
	if m.stats.TotalSentences > 0 {
		validPercent = float64(m.stats.ValidSentences) * 100.0 / float64(m.stats.TotalSentences)
		errorPercent = float64(m.stats.Errors()) * 100.0 / float64(m.stats.TotalSentences)
	}

	statsContent := strings.Builder{}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		statsLabelStyle.Render("Total:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.TotalSentences)),
		statsLabelStyle.Render("Valid:"), statsValueStyle.Render(fmt.Sprintf("%d (%.1f%%)", m.stats.ValidSentences, validPercent)),
		statsLabelStyle.Render("Errors:"), errorStyle.Render(fmt.Sprintf("%d (%.1f%%)", m.stats.Errors(), errorPercent)),
	))

	if m.stats.ChecksumErrors > 0 || m.stats.MissingChecksums > 0 || m.stats.InvalidMessages > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
			statsLabelStyle.Render("Checksum:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.ChecksumErrors)),
			statsLabelStyle.Render("Missing:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.MissingChecksums)),
			statsLabelStyle.Render("Malformed:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.InvalidMessages)),
		))
	}

	if m.stats.AnomalousValues > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s (%s: %d, %s: %d, %s: %d)\n",
			statsLabelStyle.Render("Anomalous:"), warningStyle.Render(fmt.Sprintf("%d", m.stats.AnomalousValues)),
			headerStyle.Render("position"), m.stats.InvalidPositions,
			headerStyle.Render("time"), m.stats.InvalidTimes,
			headerStyle.Render("satellite"), m.stats.InvalidSatellite,
		))
	}

	if m.stats.TooLong > 0 || m.stats.UnknownSentences > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s   %s %s\n",
			statsLabelStyle.Render("Too long:"), warningStyle.Render(fmt.Sprintf("%d", m.stats.TooLong)),
			statsLabelStyle.Render("Unsupported:"), headerStyle.Render(fmt.Sprintf("%d", m.stats.UnknownSentences)),
		))
	}

	errorRate := statsValueStyle.Render(fmt.Sprintf("%.1f err/s", m.stats.ErrorRate))
	if m.stats.ErrorRate > 0 {
		errorRate = errorStyle.Render(fmt.Sprintf("%.1f err/s", m.stats.ErrorRate))
	}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s",
		statsLabelStyle.Render("Sentence Rate:"), statsValueStyle.Render(fmt.Sprintf("%.1f/s", m.stats.SentenceRate)),
		statsLabelStyle.Render("Error Rate:"), errorRate,
	))

	s.WriteString(boxStyle.Render(statsContent.String()))
	s.WriteString("\n\n")

	// Fix and sky view (only shown once data arrives)
	if fix := m.fixSummary(); len(fix) > 0 {
		s.WriteString(statsLabelStyle.Render("Latest Fix:"))
		s.WriteString("\n")
		fixBox := boxStyle.Render(statsValueStyle.Render(strings.Join(fix, "\n")))
		if len(m.sky) > 0 {
			fixBox = lipgloss.JoinHorizontal(lipgloss.Top, fixBox, " ", boxStyle.Render(m.skyTable.View()))
		}
		s.WriteString(fixBox)
		s.WriteString("\n\n")
	}

	// Error log
	s.WriteString(statsLabelStyle.Render("Recent Events:"))
	s.WriteString("\n")

	logHeight := m.height - 22 // Reserve space for header, stats and fix
	if logHeight < 5 {
		logHeight = 5
	}

	logContent := strings.Builder{}
	startIdx := len(m.errorLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.errorLog) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.errorLog); i++ {
			entry := m.errorLog[i]
			timestamp := entry.timestamp.Format("01/02/06 15:04:05.000")
			if entry.isError {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					errorStyle.Render("✗ "+entry.message),
				))
			} else {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					warningStyle.Render("ℹ "+entry.message),
				))
			}
		}
	}

	s.WriteString(boxStyle.Width(m.width - 4).Render(logContent.String()))

	return s.String()
}
