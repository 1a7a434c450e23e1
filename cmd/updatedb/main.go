/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"github.com/ssargent/locatew/cmd/updatedb/cmd"
	"github.com/ssargent/locatew/pkg/di"
)

func main() {
	container := di.NewContainer()
	defer container.Close()

	cmd.SetContainer(container)

	cmd.Execute()
}
