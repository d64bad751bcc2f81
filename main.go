package main

import "github.com/posturasec/postura/cmd"

var execCmd = cmd.Execute

func main() {
	execCmd()
}
