package main

import "github.com/goliatone/go-wikiboot/internal/cli"

func main() {
	cli.Execute()
}
