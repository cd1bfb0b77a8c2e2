package main

import "github.com/technosupport/mxtools/internal/cli"

func main() {
	cli.Execute(cli.NewBackupCommand())
}
