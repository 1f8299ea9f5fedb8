package main

import "github.com/trenchai/trench-agent/cmd"

func main() {
	cmd.Execute()
}
