package main

import "github.com/Kamar-Folarin/github-reporter/internal/cli"

func main() {
	cli.Execute()
}
