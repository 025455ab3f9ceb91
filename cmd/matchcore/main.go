package main

import "martianoff/matchcore/cmd/matchcore/commands"

func main() {
	commands.Execute()
}
