package main

import "github.com/szigetigabor/simpleclearcase-plugin/cmd"

func main() {
	cmd.Run()
}
