package main

import "github.com/nikkisuraj26/cafe54-timecard/internal/cli"

func main() {
	cli.Execute()
}
