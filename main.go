package main

import "codekg/cmd"

func main() {
	cmd.Execute()
}
