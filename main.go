package main

import "github.com/jake-scott/lifx-cloud/cmd"

func main() {
	cmd.Execute()
}
