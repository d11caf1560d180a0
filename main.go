package main

import "github.com/matiasrios/facegate/cmd"

func main() {
	cmd.Execute()
}
