package main

import "github.com/notargets/radfem/cmd"

func main() {
	cmd.Execute()
}
