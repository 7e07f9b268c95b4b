/*
Package main implements daebench, a small command-line harness for
driving a geometric memory engine instance from a shell: ingest text,
fire queries, inspect stats, and snapshot state to disk.
*/
package main

import (
	"os"

	"github.com/charmbracelet/log"
)

func main() {
	if err := Execute(); err != nil {
		log.Fatal(err)
		os.Exit(1)
	}
}
