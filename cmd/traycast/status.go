package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/1broseidon/traycast/internal/ipc"
	"github.com/1broseidon/traycast/internal/platform"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print status as JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if statusJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}
	styled := out == os.Stdout && term.IsTerminal(int(os.Stdout.Fd()))
	fmt.Fprintln(out, renderStatus(status, styled, time.Now()))
	return nil
}

// renderStatus formats status as aligned label/value rows. styled adds
// terminal colors.
func renderStatus(st *ipc.StatusData, styled bool, now time.Time) string {
	labelStyle := lipgloss.NewStyle().
		Width(12).
		Align(lipgloss.Right).
		PaddingRight(2)
	valueStyle := lipgloss.NewStyle()
	errStyle := lipgloss.NewStyle()
	dimStyle := lipgloss.NewStyle()
	if styled {
		labelStyle = labelStyle.Foreground(lipgloss.Color("250"))
		valueStyle = valueStyle.Foreground(lipgloss.Color("15")).Bold(true)
		errStyle = errStyle.Foreground(lipgloss.Color("203"))
		dimStyle = dimStyle.Foreground(lipgloss.Color("241"))
	}

	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	lines := []string{
		row("State", st.State),
		row("Visibility", st.Visibility),
		row("Edge", orDash(st.Edge)),
		row("Scale", fmt.Sprintf("%.2f", st.Scale)),
		row("Theme", st.Theme),
		row("Companion", formatRect(st.Companion)),
		row("Tray", formatRect(st.Tray)),
	}
	detail := "closed"
	if st.DetailOpen {
		detail = "open (" + st.DetailView + ")"
	}
	lines = append(lines,
		row("Detail", detail),
		row("Location", orDash(st.Location)),
		row("Weather", orDash(st.Weather)),
	)
	if !st.FetchedAt.IsZero() {
		age := now.Sub(st.FetchedAt).Truncate(time.Second)
		lines = append(lines, row("Updated", st.FetchedAt.Format("15:04:05")+dimStyle.Render(fmt.Sprintf(" (%s ago)", age))))
	}
	if st.Loading {
		lines = append(lines, row("Loading", "yes"))
	}
	if st.LastError != "" {
		lines = append(lines, labelStyle.Render("Error")+errStyle.Render(st.LastError))
	}
	lines = append(lines,
		row("Passes", fmt.Sprintf("%d", st.Passes)),
		row("PID", fmt.Sprintf("%d", st.PID)),
		row("Uptime", (time.Duration(st.UptimeSeconds)*time.Second).String()),
	)
	return strings.Join(lines, "\n")
}

func formatRect(r *platform.Rect) string {
	if r == nil {
		return "-"
	}
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch location and forecast now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return ipc.NewClient().Refresh()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ipc.NewClient().Shutdown(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Daemon stopping.")
		return nil
	},
}

var detailView string

var detailCmd = &cobra.Command{
	Use:   "detail",
	Short: "Open or close the detail window",
}

var detailOpenCmd = &cobra.Command{
	Use:   "open",
	Short: "Open the detail window",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return ipc.NewClient().OpenDetail(detailView)
	},
}

var detailCloseCmd = &cobra.Command{
	Use:   "close",
	Short: "Close the detail window",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return ipc.NewClient().CloseDetail()
	},
}

func init() {
	detailOpenCmd.Flags().StringVar(&detailView, "view", "forecast", "Page to show: forecast or settings")
	detailCmd.AddCommand(detailCloseCmd)
	detailCmd.AddCommand(detailOpenCmd)
}
