package main

import "github.com/KaramelBytes/datamind-cli/cmd"

func main() {
	cmd.Execute()
}
