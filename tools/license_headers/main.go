package main

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"regexp"

	"github.com/bmatcuk/doublestar"
)

// headerSection matches the leading comment block of a file up to and
// including the blank line that separates it from the package clause.
var headerSection = regexp.MustCompile(`^(//.*\n)*\n`)

func main() {
	header, err := os.ReadFile("tools/license_headers/header.txt")
	fatal(err)

	target := bytes.TrimSpace(header)
	replacement := append(bytes.Clone(target), '\n', '\n')

	names, err := doublestar.Glob("**/*.go")
	fatal(err)

	for _, name := range names {
		fatal(processFile(name, target, replacement))
	}
}

func processFile(name string, target, replacement []byte) error {
	content, err := os.ReadFile(name)
	if err != nil {
		return fmt.Errorf("%s: %v", name, err)
	}

	current := headerSection.Find(content)
	if bytes.Equal(bytes.TrimSpace(current), target) {
		fmt.Printf("already up to date: %s\n", name)
		return nil
	}

	replaced := headerSection.ReplaceAll(content, replacement)
	if err := os.WriteFile(name, replaced, 0o644); err != nil {
		return fmt.Errorf("%s: %v", name, err)
	}

	fmt.Printf("updated: %s\n", name)
	return nil
}

func fatal(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
