package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// CLI flags parsed from command line.
type cliFlags struct {
	Serve     string
	ServeMCP  bool
	Agency    string
	DaysBack  int
	Recipient string
	NoEmail   bool
	Verbose   bool
	Version   bool
}

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var flags cliFlags

	fs := flag.NewFlagSet("regwatch", flag.ContinueOnError)
	fs.StringVar(&flags.Serve, "serve", "", "run a capability agent server: fetch, comparator, or all")
	fs.BoolVar(&flags.ServeMCP, "serve-mcp", false, "run as MCP server exposing the Federal Register tools")
	fs.StringVar(&flags.Agency, "agency", "", "agency to query: HHS, CMS, or BOTH")
	fs.IntVar(&flags.DaysBack, "days", 0, "look-back window in days (default 30)")
	fs.StringVar(&flags.Recipient, "recipient", "", "notification recipient email address")
	fs.BoolVar(&flags.NoEmail, "no-email", false, "print the report instead of emailing it")
	fs.BoolVar(&flags.Verbose, "verbose", false, "enable progress output")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if flags.Version {
		fmt.Println(version)
		return nil
	}

	if flags.ServeMCP {
		return runServeMCP()
	}
	if flags.Serve != "" {
		return runServe(flags.Serve)
	}

	prompt := readPrompt(fs.Args())
	if prompt == "" {
		return fmt.Errorf("no request given; usage: regwatch [flags] \"<request>\"")
	}

	return runWorkflow(flags, prompt)
}

// readPrompt takes the request text from the remaining arguments, or from
// stdin when the command is part of a pipe.
func readPrompt(args []string) string {
	if len(args) > 0 {
		return strings.TrimSpace(strings.Join(args, " "))
	}

	info, err := os.Stdin.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice != 0 {
		return ""
	}

	buf := make([]byte, 64*1024)
	n, _ := os.Stdin.Read(buf)
	return strings.TrimSpace(string(buf[:n]))
}
