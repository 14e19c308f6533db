package main

import "github.com/iksnae/session-archive/cmd"

func main() {
	cmd.Execute()
}
