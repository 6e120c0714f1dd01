package main

import "studiosim/cmd"

func main() {
	cmd.Execute()
}
