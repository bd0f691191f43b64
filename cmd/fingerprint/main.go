package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/jafarshop/stockimport/internal/fingerprint"
)

// Prints the fingerprint of each URL given as an argument, or of each line of
// stdin when no argument is given.
func main() {
	length := flag.Int("length", fingerprint.DefaultHexLength, "hex digits kept from the digest")
	flag.Parse()

	hasher, err := fingerprint.NewHasher(*length)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if flag.NArg() > 0 {
		for _, u := range flag.Args() {
			fmt.Printf("%s\t%s\n", hasher.Of(u), u)
		}
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		u := scanner.Text()
		if u == "" {
			continue
		}
		fmt.Printf("%s\t%s\n", hasher.Of(u), u)
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read input: %v\n", err)
		os.Exit(1)
	}
}
