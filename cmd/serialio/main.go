/*
Copyright © 2025 Jeff Valk
*/
package main

import "github.com/jeffvalk/serialio/cmd"

func main() {
	cmd.Execute()
}
