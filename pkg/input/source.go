// Package input consolidates host-list input methods: inline flags,
// list files, and piped stdin. Scan targets get normalized to bare
// hostnames; suppression lists are kept literal so they match scanner
// output exactly.
package input

import (
	"bufio"
	"os"
	"strings"
)

// StringSliceFlag implements flag.Value for repeated or comma-separated
// string flags.
type StringSliceFlag []string

func (s *StringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *StringSliceFlag) Set(value string) error {
	for _, v := range strings.Split(value, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			*s = append(*s, v)
		}
	}
	return nil
}

// Source consolidates the ways a host list reaches a command.
type Source struct {
	Hosts    []string // from repeated/comma-separated flags
	ListFile string   // newline-delimited file, # comments allowed
	Stdin    bool     // read piped stdin when it is not a terminal
}

// Targets returns the deduplicated host list normalized for scan input:
// whitespace trimmed, scheme stripped, any path cut, lowercased.
func (s *Source) Targets() ([]string, error) {
	return s.gather(normalizeHost)
}

// Entries returns the deduplicated list with entries kept literal apart
// from whitespace trimming. Use for suppression sets, which must match
// scanner-reported hosts byte for byte.
func (s *Source) Entries() ([]string, error) {
	return s.gather(func(line string) string { return line })
}

func (s *Source) gather(normalize func(string) string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)

	add := func(line string) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			return
		}
		line = normalize(line)
		if line == "" || seen[line] {
			return
		}
		seen[line] = true
		out = append(out, line)
	}

	for _, h := range s.Hosts {
		add(h)
	}

	if s.ListFile != "" {
		lines, err := readLines(s.ListFile)
		if err != nil {
			return nil, err
		}
		for _, line := range lines {
			add(line)
		}
	}

	if s.Stdin {
		lines, err := readStdin()
		if err != nil {
			return nil, err
		}
		for _, line := range lines {
			add(line)
		}
	}

	return out, nil
}

// normalizeHost reduces operator input like "HTTPS://Shop.Example.com/x"
// to the bare identifier "shop.example.com".
func normalizeHost(line string) string {
	line = strings.TrimPrefix(line, "http://")
	line = strings.TrimPrefix(line, "https://")
	if i := strings.IndexByte(line, '/'); i >= 0 {
		line = line[:i]
	}
	return strings.ToLower(line)
}

func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

func readStdin() ([]string, error) {
	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) != 0 {
		// Not a pipe, nothing to read
		return nil, nil
	}

	var lines []string
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}
