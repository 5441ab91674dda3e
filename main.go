package main

import "github.com/lepinkainen/cohort/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
