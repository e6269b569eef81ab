package ui

import "fmt"

// NextRerunSaveOrExit shows a green prompt and waits for a single 'R'
// (rerun), 'S' (save) or ESC (exit). Returns 'R', 'S' or 27.
func NextRerunSaveOrExit() rune {
	msg := "\nPress 'R' to Rerun with a random start, 'S' to Save, <ESC> to exit"
	fmt.Printf("\033[32m%s\033[0m\n", msg)
	DrainKeys()
	keyEvents := StartKeyEvents()
	for {
		k, ok := <-keyEvents
		if !ok {
			return 27
		}
		if k == 'R' || k == 'r' {
			return 'R'
		}
		if k == 'S' || k == 's' {
			return 'S'
		}
		if k == 27 { // ESC
			return 27
		}
	}
}
