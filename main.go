package main

import "nyayadrishti/casemetrics/cmd"

func main() {
	cmd.Execute()
}
