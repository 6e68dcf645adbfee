package main

import "github.com/encodeous/p4p/cmd"

func main() {
	cmd.Execute()
}
