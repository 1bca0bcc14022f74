package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/betbot/go-orion/orion/types"
)

var (
	// 样式定义
	kindStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	pttStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("2")).
			Padding(0, 1)

	textStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("4")).
			Padding(0, 1)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))

	senderStyle = lipgloss.NewStyle().
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))
)

// renderEvent formats one stream event as a single line.
func renderEvent(ev *types.Event) string {
	ts := time.Now()
	if ev.TS > 0 {
		ts = time.UnixMilli(int64(ev.TS * 1000))
	}

	var badge string
	switch ev.EventType {
	case types.EventPTT:
		badge = pttStyle.Render("PTT")
	case types.EventText:
		badge = textStyle.Render("TEXT")
	default:
		badge = kindStyle.Render(strings.ToUpper(string(ev.EventType)))
	}

	parts := []string{timeStyle.Render(ts.Format("15:04:05")), badge}
	if who := senderName(ev); who != "" {
		parts = append(parts, senderStyle.Render(who))
	}
	if ev.GroupID != "" {
		parts = append(parts, dimStyle.Render("@"+ev.GroupID))
	}

	switch ev.EventType {
	case types.EventPTT:
		parts = append(parts, ev.Media)
	case types.EventText:
		parts = append(parts, ev.Text)
	case types.EventUserStatus:
		if st, err := ev.ParseUserStatus(); err == nil {
			parts = append(parts, fmt.Sprintf("%s %s", st.ID, st.Presence))
		}
	}
	return strings.Join(parts, " ")
}

func senderName(ev *types.Event) string {
	if ev.SenderName != "" {
		return ev.SenderName
	}
	return ev.Sender
}
