package main

import "github.com/naka-gawa/github-repo-analyzer/cmd"

func main() {
	cmd.Execute()
}
