package main

import "kiosk/cmd"

func main() {
	cmd.Execute()
}
