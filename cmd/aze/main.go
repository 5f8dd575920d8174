// aze is the player-side command line client: it registers player
// accounts, runs the note-consumption loop that drives the masking
// protocol, submits betting actions and renders the table state.
package main

import (
	"os"

	"github.com/mFragaBA/aze-cli/cmd/aze/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
