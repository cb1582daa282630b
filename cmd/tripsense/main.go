package main

import "github.com/goodcabs/tripsense/internal/cli"

func main() {
	cli.Execute()
}
