package main

import "fitsim/cmd"

func main() {
	cmd.Execute()
}
