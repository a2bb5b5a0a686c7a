package main

import "github.com/notargets/femtools/cmd"

func main() {
	cmd.Execute()
}
