// Package main provides the entry point for the antennascan CLI.
//
// antennascan downloads the antenna installations that the Greek
// telecommunications regulator lists for one municipality on
// keraies.eett.gr and exports them to CSV and XLSX.
//
// Usage:
//
//	antennascan scan <municipality>
//	antennascan scan --list
//
// See --help for all available options.
package main

// main is the entry point for antennascan.
func main() {
	Execute()
}
