package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rshade/ec2-pricing-scraper/internal/catalog"
)

// main is the program entry point that checks a pricing catalog file for
// canonical form: naturally sorted keys, 4-space indentation, no trailing
// whitespace, no trailing newline.
//
// It parses command-line flags for the catalog path (`-catalog`) and an
// optional rewrite switch (`-write`). A non-canonical file exits with status
// 1 unless `-write` is set, in which case the file is rewritten in place.
// Parse failures always exit non-zero.
func main() {
	catalogPath := flag.String("catalog", "data/pricing.json", "Path to the pricing catalog file")
	write := flag.Bool("write", false, "Rewrite the file in canonical form instead of just reporting")
	flag.Parse()

	store := catalog.NewStore(*catalogPath, zerolog.Nop())

	canonical, err := store.Canonicalize()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading catalog: %v\n", err)
		os.Exit(1)
	}

	current, err := os.ReadFile(*catalogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading catalog: %v\n", err)
		os.Exit(1)
	}

	if bytes.Equal(current, canonical) {
		fmt.Printf("%s is canonical\n", *catalogPath)
		return
	}

	if !*write {
		fmt.Fprintf(os.Stderr, "%s is not in canonical form (re-run with -write to fix)\n", *catalogPath)
		os.Exit(1)
	}

	if err := os.WriteFile(*catalogPath, canonical, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing catalog: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Rewrote %s in canonical form (%d bytes)\n", *catalogPath, len(canonical))
}
