// Command apicompat fails when a revised swagger document drops anything
// clients of the base document may rely on.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

func main() {
	basePath := flag.String("base", "", "base swagger document (JSON or YAML)")
	revisionPath := flag.String("revision", "docs/swagger.json", "revised swagger document")
	flag.Parse()

	if strings.TrimSpace(*basePath) == "" {
		fmt.Fprintln(os.Stderr, "usage: apicompat -base <path> [-revision docs/swagger.json]")
		os.Exit(2)
	}

	base, err := loadSpec(*basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load base spec: %v\n", err)
		os.Exit(1)
	}
	revision, err := loadSpec(*revisionPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load revision spec: %v\n", err)
		os.Exit(1)
	}

	if issues := compare(base, revision); len(issues) > 0 {
		fmt.Fprintln(os.Stderr, "backward compatibility check failed:")
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "- %s\n", issue)
		}
		os.Exit(1)
	}

	fmt.Println("api compatibility check passed")
}
