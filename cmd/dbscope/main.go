package main

import "github.com/momeni/dbscope/cmd/dbscope/command"

func main() {
	command.Execute()
}
