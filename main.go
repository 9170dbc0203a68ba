package main

import "facet/cmd"

func main() {
	cmd.Execute()
}
