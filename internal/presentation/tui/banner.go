package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs an ASCII art banner for Espalier.
func PrintBanner() {
	p := termenv.ColorProfile()
	// Subtle gradient-like color scheme (Teal/Green)
	s1 := termenv.String("                       _ _           ").Foreground(p.Color("#2dd4bf"))
	s2 := termenv.String("   ___  ___ _ __   __ _| (_) ___ _ __ ").Foreground(p.Color("#34d399"))
	s3 := termenv.String("  / _ \\/ __| '_ \\ / _` | | |/ _ \\ '__|").Foreground(p.Color("#4ade80"))
	s4 := termenv.String(" |  __/\\__ \\ |_) | (_| | | |  __/ |   ").Foreground(p.Color("#a3e635"))
	s5 := termenv.String("  \\___||___/ .__/ \\__,_|_|_|\\___|_|   ").Foreground(p.Color("#facc15"))
	s6 := termenv.String("           |_|                        ").Foreground(p.Color("#fb923c"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println(s6)
	fmt.Println()
}
