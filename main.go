package main

import "github.com/quangdo/skm/cmd"

func main() {
	cmd.Execute()
}
