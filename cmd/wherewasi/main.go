package main

import "github.com/rlane/wherewasi/cmd/wherewasi/commands"

func main() {
	commands.Execute()
}
