// Package ui holds the terminal styling helpers shared by CLI commands.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// RenderPass styles text as a success.
func RenderPass(s string) string { return passStyle.Render(s) }

// RenderWarn styles text as a warning.
func RenderWarn(s string) string { return warnStyle.Render(s) }

// RenderFail styles text as a failure.
func RenderFail(s string) string { return failStyle.Render(s) }

// RenderAccent styles text as a highlighted label.
func RenderAccent(s string) string { return accentStyle.Render(s) }

// RenderDim styles text as secondary detail.
func RenderDim(s string) string { return dimStyle.Render(s) }
