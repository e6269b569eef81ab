package ui

import (
	"sync"

	"github.com/eiannone/keyboard"
)

// Singleton buffered channel and one reader goroutine to avoid multiple opens
// and to make DrainKeys non-blocking and reliable across prompts.
var (
	keyCh     chan rune
	startOnce sync.Once
)

// StartKeyEvents returns a channel that emits single-key runes read without
// Enter; ESC is delivered as 27. It initializes a single background reader the
// first time it is called. When the keyboard cannot be opened (no TTY, e.g.
// piped stdin) the channel is closed, so prompts fall back to "exit".
func StartKeyEvents() chan rune {
	startOnce.Do(func() {
		keyCh = make(chan rune, 64)
		if err := keyboard.Open(); err != nil {
			close(keyCh)
			return
		}
		go func() {
			defer keyboard.Close()
			for {
				char, key, err := keyboard.GetKey()
				if err != nil {
					close(keyCh)
					return
				}
				var r rune
				switch {
				case key == 0:
					r = char
				case key == keyboard.KeyEsc:
					r = 27
				default:
					continue
				}
				// Drop events if nobody is consuming.
				select {
				case keyCh <- r:
				default:
				}
			}
		}()
	})
	return keyCh
}

// DrainKeys consumes any immediately available keys to avoid accidental triggers.
func DrainKeys() {
	ch := StartKeyEvents()
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
