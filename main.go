package main

import "github.com/openstay/openstay-release/cmd"

func main() {
	cmd.Execute()
}
