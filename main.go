package main

import "github.com/patchwatch/repoboard/cmd"

func main() {
	cmd.Execute()
}
