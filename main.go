package main

import "courserec/internal/cli"

func main() {
	cli.Execute()
}
