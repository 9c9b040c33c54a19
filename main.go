package main

import "cashier/cmd"

func main() {
	cmd.Execute()
}
