package main

import "github.com/Mohsinsiddi/w3flow/cmd"

func main() {
	cmd.Execute()
}
