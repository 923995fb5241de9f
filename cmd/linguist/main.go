package main

import "github.com/drshade/linguist/internal/cmd"

func main() {
	cmd.Execute()
}
