package main

import "github.com/assafkip/spanforge/cmd/spanforge/commands"

func main() {
	commands.Execute()
}
