package main

import "github.com/diogo/chatllm/internal/commands"

func main() {
	commands.Execute()
}
