package main

import "github.com/dmitrijs2005/roleboard/cmd/boardctl/commands"

func main() {
	commands.Execute()
}
