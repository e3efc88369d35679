// AngelaMos | 2026
// main.go

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/carterperez-dev/roadassist-api/internal/auth"
)

func main() {
	privatePath := flag.String(
		"private",
		"keys/private.pem",
		"path to write the ES256 private key",
	)
	publicPath := flag.String(
		"public",
		"keys/public.pem",
		"path to write the ES256 public key",
	)
	flag.Parse()

	if _, err := os.Stat(*privatePath); err == nil {
		fmt.Fprintf(
			os.Stderr,
			"refusing to overwrite existing key at %s\n",
			*privatePath,
		)
		os.Exit(1)
	}

	if err := auth.GenerateKeyPair(*privatePath, *publicPath); err != nil {
		fmt.Fprintf(os.Stderr, "generate key pair: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %s and %s\n", *privatePath, *publicPath)
}
