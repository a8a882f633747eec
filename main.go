package main

import "EchoFM/cmd"

func main() {
	cmd.Execute()
}
