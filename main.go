package main

import "github.com/fulmenhq/gamescout/cmd"

func main() {
	cmd.Execute()
}
