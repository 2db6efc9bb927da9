// Package cmd implements the command-line interface for quranku.
package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/viper"

	"github.com/quranku-cli/quranku/color"
	"github.com/quranku-cli/quranku/icon"
	"github.com/quranku-cli/quranku/key"
	"github.com/quranku-cli/quranku/style"
)

// CheckDependencies verifies the availability of the configured playback engine.
// The current implementation validates the presence of 'mpv' in the system PATH.
func CheckDependencies() {
	engine := viper.GetString(key.PlayerEngine)
	if engine == "" {
		engine = "mpv"
	}

	_, err := exec.LookPath(engine)
	if err != nil {
		printMissingDependencyError(engine)
		os.Exit(1)
	}
}

func printMissingDependencyError(dep string) {
	var installCmd string
	switch runtime.GOOS {
	case "darwin":
		installCmd = "brew install " + dep
	case "linux":
		installCmd = "sudo apt install " + dep // Generic, maybe check distro
	case "windows":
		installCmd = "scoop install " + dep
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(color.HiRed).Render(fmt.Sprintf("%s Error: Missing Dependency", icon.Get(icon.Fail)))
	body := fmt.Sprintf("The required dependency '%s' was not found in your PATH.", dep)

	suggestion := ""
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(color.Gold).Bold(true).Render(installCmd))
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}
