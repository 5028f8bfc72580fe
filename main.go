package main

import (
	"hbcplayer/cmd"
)

func main() {
	cmd.Execute()
}
