package main

import "ssincom-backend/cmd"

func main() {
	cmd.Execute()
}
