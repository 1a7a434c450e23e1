/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"github.com/ssargent/locatew/cmd/locate/cmd"
	"github.com/ssargent/locatew/pkg/di"
)

func main() {
	// Initialize dependency injection container
	container := di.NewContainer()
	defer container.Close()

	// Inject dependencies into cmd package
	cmd.SetContainer(container)

	cmd.Execute()
}
