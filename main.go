package main

import "github.com/nextlevelbuilder/pairline/cmd"

func main() {
	cmd.Execute()
}
