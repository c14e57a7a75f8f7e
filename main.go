package main

import "precompress/cmd"

func main() {
	cmd.Execute()
}
