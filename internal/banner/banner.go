package banner

import (
	"fitsim/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

func GetString() string {
	renderer := lipgloss.DefaultRenderer()

	style := renderer.NewStyle().
		Foreground(styles.ColorBanner).
		Bold(true)

	ascii := `
    _______ __  _____ _
   / ____(_) /_/ ___/(_)___ ___
  / /_  / / __/\__ \/ / __ '__ \
 / __/ / / /_ ___/ / / / / / / /
/_/   /_/\__//____/_/_/ /_/ /_/ `

	return "\n" + style.Render(ascii) + "\n"
}
