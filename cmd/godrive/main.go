package main

import (
	"fmt"
	"os"

	"github.com/mwantia/godrive/cmd/godrive/cli"
	"github.com/mwantia/godrive/cmd/godrive/cli/client"
	"github.com/mwantia/godrive/cmd/godrive/cli/server"
)

var (
	version = "0.0.1-dev"
	commit  = "main"
)

func main() {
	info := cli.VersionInfo{
		Version: version,
		Commit:  commit,
	}
	root := cli.NewRootCommand(info)

	root.AddCommand(cli.NewVersionCommand(info))

	root.AddCommand(server.NewAgentCommand())
	root.AddCommand(server.NewConfigCommand())

	root.AddCommand(client.NewFolderCommand())
	root.AddCommand(client.NewFileCommand())

	if err := root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
