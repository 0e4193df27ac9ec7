package main

import "github.com/mbennett/easel/cmd"

func main() {
	cmd.Execute()
}
