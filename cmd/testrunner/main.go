package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lawnchairsociety/abyssforge/test"
)

func main() {
	serverURL := flag.String("url", "ws://localhost:4040/ws", "Abyss server WebSocket URL")
	verbose := flag.Bool("v", false, "Verbose output - show detailed actions for each test")
	flag.Parse()

	test.Verbose = *verbose

	fmt.Printf("Running integration tests against %s\n", *serverURL)
	fmt.Println("Make sure the abyss server is running with connections.max_per_ip: 0!")
	if *verbose {
		fmt.Println("Verbose mode enabled - showing detailed test actions")
	}
	fmt.Println()

	results := test.RunAllTests(*serverURL)
	test.PrintResults(results)

	for _, result := range results {
		if !result.Passed {
			os.Exit(1)
		}
	}
}
