// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	rankStyle = lipgloss.NewStyle().
			Width(4).
			Align(lipgloss.Right).
			Foreground(lipgloss.Color("#6EC4F4"))

	scoreStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6EF4A1"))

	dimStyle = lipgloss.NewStyle().
			Faint(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F45E6E"))
)

// sprintfS formats text and renders it in the named style.
func sprintfS(style lipgloss.Style, format string, a ...any) string {
	return style.Render(fmt.Sprintf(format, a...))
}
