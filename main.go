package main

import "github.com/mj1618/patternpilot/cmd"

func main() {
	cmd.Execute()
}
