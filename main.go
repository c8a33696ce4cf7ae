package main

import "github.com/jsphweid/tieline/cmd"

func main() {
	cmd.Execute()
}
