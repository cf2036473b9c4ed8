// Package tui holds the terminal presentation helpers for the canopy CLI.
package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the Canopy ASCII art banner with the build version.
func PrintBanner(version string) {
	p := termenv.ColorProfile()
	// Using a subtle gradient-like color scheme (Indigo/Violet)
	s1 := termenv.String("   ______").Foreground(p.Color("#818cf8"))
	s2 := termenv.String("  / ____/___ _____  ____  ____  __  __").Foreground(p.Color("#a78bfa"))
	s3 := termenv.String(" / /   / __ `/ __ \\/ __ \\/ __ \\/ / / /").Foreground(p.Color("#c084fc"))
	s4 := termenv.String("/ /___/ /_/ / / / / /_/ / /_/ / /_/ /").Foreground(p.Color("#e879f9"))
	s5 := termenv.String("\\____/\\__,_/_/ /_/\\____/ .___/\\__, /").Foreground(p.Color("#f472b6"))
	s6 := termenv.String("                      /_/    /____/").Foreground(p.Color("#fb7185"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println(s6)
	if v := strings.TrimSpace(version); v != "" {
		fmt.Println(termenv.String("  v" + v).Foreground(p.Color("#9ca3af")))
	}
	fmt.Println()
}
