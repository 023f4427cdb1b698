package main

import "github.com/webntricks/unisearch/cmd/unisearch/cmd"

func main() {
	cmd.Execute()
}
