package main

import "github.com/theirongolddev/nakop/cmd"

func main() {
	cmd.Execute()
}
