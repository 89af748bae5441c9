package main

import "github.com/pilab-dev/fitlink/cmd/fitlink/cmd"

func main() {
	cmd.Execute()
}
