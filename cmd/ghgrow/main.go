package main

import (
	"ghgrow/cmd/ghgrow/cmd"
)

func main() {
	cmd.Execute()
}
