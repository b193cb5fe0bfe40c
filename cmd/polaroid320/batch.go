package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/shlex"
)

// runBatch reads path line by line, tokenizing each non-empty, non-comment
// line with shlex the way a shell would and dispatching it through the same
// options/run path as a single command-line invocation. This is the
// supplemented feature over main.c, which only ever fetches every picture
// currently on the camera in one run: a batch script lets one process
// invocation issue several independent runs, each with its own flags. Each
// line uses the same flag syntax as the command line; every run still
// fetches every picture on the camera, and non-flag words are ignored.
//
// A failing line is logged and skipped rather than aborting the batch,
// since picture numbers (and therefore batch lines acting on them) are
// independent units of work.
func runBatch(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open batch file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		tokens, err := shlex.Split(line)
		if err != nil {
			log.Printf("batch line %d: tokenize %q: %v", lineNo, line, err)
			continue
		}

		opt, err := parseOptions(tokens)
		if err != nil {
			log.Printf("batch line %d: %v", lineNo, err)
			continue
		}
		if err := run(opt); err != nil {
			log.Printf("batch line %d: %v", lineNo, err)
			continue
		}
	}
	return scanner.Err()
}
