// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var statsLineRe = regexp.MustCompile(
	`Packets: (\d+)\s+Acks: (\d+)\s+Errors: (\d+)\s+Success: (\S+)\s+Queue: (\d+)/(\d+)`)

// dashboardStats is the last stats report parsed from the log stream.
type dashboardStats struct {
	packets, acks, errors uint64
	successStr            string
	queueLen, queueCap    int
	received              bool
}

type logLine struct {
	timestamp time.Time
	text      string
}

type dashboardModel struct {
	connInfo      string
	stats         dashboardStats
	events        []logLine
	maxLogEntries int
	width, height int
	quitting      bool
}

type dashLineMsg string
type dashErrMsg error
type dashTickMsg time.Time

func initialDashboardModel(connInfo string) dashboardModel {
	return dashboardModel{
		connInfo:      connInfo,
		maxLogEntries: 200,
		width:         80,
		height:        24,
	}
}

func dashboardTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return dashTickMsg(t) })
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(dashboardTick(), tea.EnterAltScreen)
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case dashTickMsg:
		return m, dashboardTick()

	case dashErrMsg:
		m.addEvent(fmt.Sprintf("connection error: %v", error(msg)))

	case dashLineMsg:
		line := string(msg)
		if match := statsLineRe.FindStringSubmatch(line); match != nil {
			m.stats = parseStatsMatch(match)
		} else if strings.TrimSpace(line) != "" && !strings.HasPrefix(line, "===") {
			m.addEvent(line)
		}
	}

	return m, nil
}

func parseStatsMatch(match []string) dashboardStats {
	packets, _ := strconv.ParseUint(match[1], 10, 64)
	acks, _ := strconv.ParseUint(match[2], 10, 64)
	errors, _ := strconv.ParseUint(match[3], 10, 64)
	queueLen, _ := strconv.Atoi(match[5])
	queueCap, _ := strconv.Atoi(match[6])
	return dashboardStats{
		packets: packets, acks: acks, errors: errors,
		successStr: match[4], queueLen: queueLen, queueCap: queueCap,
		received: true,
	}
}

func (m *dashboardModel) addEvent(text string) {
	m.events = append(m.events, logLine{timestamp: time.Now(), text: text})
	if len(m.events) > m.maxLogEntries {
		m.events = m.events[len(m.events)-m.maxLogEntries:]
	}
}

func (m dashboardModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).Padding(0, 1)
	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	boxStyle := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).Padding(0, 1)

	var s strings.Builder
	s.WriteString(titleStyle.Render("HIDBRIDGE - DASHBOARD"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | Press 'q' to quit", m.connInfo)))
	s.WriteString("\n\n")

	if !m.stats.received {
		s.WriteString(headerStyle.Render("Waiting for the first stats report..."))
		s.WriteString("\n\n")
	} else {
		stats := m.stats
		content := fmt.Sprintf("%s %s   %s %s   %s %s\n%s %s   %s %d/%d",
			labelStyle.Render("Packets:"), valueStyle.Render(fmt.Sprintf("%d", stats.packets)),
			labelStyle.Render("Acks:"), valueStyle.Render(fmt.Sprintf("%d", stats.acks)),
			labelStyle.Render("Errors:"), errorStyle.Render(fmt.Sprintf("%d", stats.errors)),
			labelStyle.Render("Success:"), valueStyle.Render(stats.successStr),
			labelStyle.Render("Queue:"), stats.queueLen, stats.queueCap,
		)
		s.WriteString(boxStyle.Render(content))
		s.WriteString("\n\n")
	}

	s.WriteString(labelStyle.Render("Recent Events:"))
	s.WriteString("\n")

	logHeight := m.height - 12
	if logHeight < 5 {
		logHeight = 5
	}
	startIdx := len(m.events) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	var logContent strings.Builder
	if len(m.events) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.events); i++ {
			e := m.events[i]
			logContent.WriteString(fmt.Sprintf("%s %s\n",
				headerStyle.Render(e.timestamp.Format("15:04:05.000")), e.text))
		}
	}
	s.WriteString(boxStyle.Width(m.width - 4).Render(logContent.String()))

	return s.String()
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Live TUI view of firmware stats and log events",
	Long: `A bubbletea dashboard attached to the auxiliary log/stats link: renders
the most recent 30-second stats report alongside a scrolling event log of
interrupt notices, control-plane changes, and errors.`,
	RunE: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := openTarget(auxTarget())
	if err != nil {
		return err
	}
	defer conn.Close()

	msgCh := make(chan tea.Msg, 64)
	go func() {
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			msgCh <- dashLineMsg(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			msgCh <- dashErrMsg(err)
		}
		close(msgCh)
	}()

	p := tea.NewProgram(initialDashboardModel(connInfo))
	go func() {
		for msg := range msgCh {
			p.Send(msg)
		}
	}()

	_, err = p.Run()
	return err
}
