package main

import "github.com/mklimuk/semester-pilot/pkg/cli"

func main() {
	cli.Execute()
}
