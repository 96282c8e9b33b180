package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B")).MarginBottom(1)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Width(26)
	valueStyle = lipgloss.NewStyle().Bold(true)
	goodStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6B7280")).
			Padding(0, 2)
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "solarctl",
		Short: "Solar sizing estimates and SolarizeIt maintenance",
		Long: `solarctl sizes rooftop solar systems offline, using the same model as the
SolarizeIt API, and manages the analysis database.

Environment Variables:
  DATABASE_URL          Postgres connection string for migrate
  SOLAR_TARIFF_PER_KWH  Default tariff for estimate`,
		SilenceUsage: true,
	}
	root.AddCommand(newEstimateCmd(), newMigrateCmd())
	return root
}
