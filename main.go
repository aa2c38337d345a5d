package main

import "bitwise74/taskcamp/cmd"

func main() {
	cmd.Execute()
}
