package main

import "exusiai.dev/boxstats/cmd/app"

func main() {
	app.Run()
}
