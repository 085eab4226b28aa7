package main

import "cita-client/cmd/cita-cli/cmd"

func main() {
	cmd.Execute()
}
