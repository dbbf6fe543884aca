package main

import "github.com/mcoot/whamageddon/internal/cli"

func main() {
	cli.Execute()
}
