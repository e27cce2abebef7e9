package main

import (
	"chicago-openelex/cmd/chicago-elex/commands"
)

func main() {
	commands.Execute()
}
