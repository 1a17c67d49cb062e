package main

import "github.com/taskflow/client-go/internal/cli"

func main() {
	cli.Execute()
}
