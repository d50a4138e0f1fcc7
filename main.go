package main

import "garagesite/pkg/cli"

func main() {
	cli.Execute()
}
