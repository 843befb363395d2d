package main

import "github.com/viktsys/tradestore/cmd"

func main() {
	cmd.Execute()
}
