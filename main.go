package main

import (
	"github.com/relay-bot/relay/cmd"
)

func main() {
	cmd.Execute()
}
