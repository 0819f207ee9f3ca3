// Command citrine is the command line interface to the Citrination
// materials data platform: dataset upload, data views, prediction,
// experimental design, and sequential-learning campaigns.
package main

import "github.com/citrinelab/citrine/commands"

func main() {
	commands.Execute()
}
