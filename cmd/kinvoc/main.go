package main

import (
	"log"

	"github.com/lexfield/kinvoc/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}
