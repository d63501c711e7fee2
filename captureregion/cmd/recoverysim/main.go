// Package main is a command line tool to run the recovery planner on recorded or hand written
// scenarios.
package main

import (
	"log"
	"os"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
