// kgview is an interactive force-directed explorer for a personal knowledge graph.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
