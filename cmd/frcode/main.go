/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/ssargent/locatew/cmd/frcode/cmd"

func main() {
	cmd.Execute()
}
