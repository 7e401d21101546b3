package main

import "github.com/miguel731/osintdash/cli"

func main() {
	cli.Execute()
}
