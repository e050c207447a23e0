package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/pokerkelly/poker"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	handStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	winStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	tieStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	categoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))

	percentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)

// board renders community cards, or a dash preflop.
func board(cards []poker.Card) string {
	if len(cards) == 0 {
		return "-"
	}
	return poker.FormatCards(cards)
}

func percent(x float64) string {
	return fmt.Sprintf("%.2f%%", x*100)
}

func money(x float64) string {
	return fmt.Sprintf("$%.2f", x)
}
