// daybook is a terminal journal whose day feeds follow new entries and
// streamed replies.
package main

import (
	"os"

	"github.com/wethinkt/go-daybook/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
