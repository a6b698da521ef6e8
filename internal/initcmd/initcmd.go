// Package initcmd implements the 'sphinxql init' command, which writes a
// starter sphinxql.ini.
package initcmd

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shipq/sphinxql/dburl"
	"github.com/shipq/sphinxql/internal/config"
)

// Options configures the init command execution.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer

	// Dir is the directory to write sphinxql.ini to. Empty means CWD.
	Dir string
}

// Run executes the init command with the given arguments.
// Returns an exit code (0 for success, 1 for error).
func Run(args []string, opts Options) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(opts.Stderr)

	rawURL := fs.String("url", dburl.Build("127.0.0.1", dburl.DefaultPort), "searchd URL (sphinxql://host:port)")
	timeout := fs.String("timeout", "", "dial/read/write timeout, e.g. 2s")
	precision := fs.Int("float-precision", 0, "decimals for float literals (0 = shortest)")
	force := fs.Bool("force", false, "overwrite existing sphinxql.ini")
	help := fs.Bool("help", false, "show help for init command")
	helpShort := fs.Bool("h", false, "show help for init command")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	if *help || *helpShort {
		printHelp(opts.Stdout)
		return 0
	}

	dir := opts.Dir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(opts.Stderr, "Error: failed to get current directory: %v\n", err)
			return 1
		}
		dir = cwd
	}

	settings := map[string]string{"url": *rawURL, "timeout": *timeout}
	if *precision != 0 {
		settings["float_precision"] = strconv.Itoa(*precision)
	}
	if err := execute(dir, settings, *force, opts.Stdout); err != nil {
		fmt.Fprintf(opts.Stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}

// execute validates the settings and writes the config file.
func execute(targetDir string, settings map[string]string, force bool, stdout io.Writer) error {
	configPath := filepath.Join(targetDir, config.ConfigFilename)

	existed := false
	if info, err := os.Stat(configPath); err == nil {
		if info.IsDir() {
			return fmt.Errorf("expected file but found directory: %s", config.ConfigFilename)
		}
		if !force {
			return fmt.Errorf("%s already exists\n"+
				"  Use --force to overwrite", config.ConfigFilename)
		}
		existed = true
	}

	content, err := renderINI(settings)
	if err != nil {
		return err
	}

	// Write atomically: write to temp file then rename
	tmpPath := configPath + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmpPath, configPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize config file: %w", err)
	}

	printSuccess(stdout, settings["url"], existed)
	return nil
}

// renderINI generates the sphinxql.ini content. The result is parsed back
// and loaded before it is returned, so invalid settings never reach disk.
func renderINI(settings map[string]string) (string, error) {
	f := &config.File{}
	for _, key := range []string{"url", "timeout", "float_precision"} {
		if v := settings[key]; v != "" {
			f.Set("searchd", key, v)
		}
	}

	var sections bytes.Buffer
	if err := f.Write(&sections); err != nil {
		return "", err
	}

	parsed, err := config.Parse(bytes.NewReader(sections.Bytes()))
	if err != nil {
		return "", err
	}
	if _, err := config.FromFile(parsed, ""); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("# sphinxql configuration file\n")
	sb.WriteString("#\n")
	sb.WriteString("# [searchd] configures the default adapter. Add [searchd.<name>]\n")
	sb.WriteString("# sections for more listeners. Keys: url, host, port, user, password,\n")
	sb.WriteString("# charset, timeout, interpolate_params, float_precision.\n")
	sb.WriteString("# The SPHINXQL_URL environment variable fills an empty default url.\n")
	sb.WriteString("\n")
	sb.Write(sections.Bytes())

	return sb.String(), nil
}

// printSuccess prints the success message with next steps.
func printSuccess(w io.Writer, url string, overwrote bool) {
	if overwrote {
		fmt.Fprintf(w, "✓ Overwrote %s\n", config.ConfigFilename)
	} else {
		fmt.Fprintf(w, "✓ Created %s\n", config.ConfigFilename)
	}
	fmt.Fprintf(w, "  default adapter: %s\n", url)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Next steps:")
	fmt.Fprintln(w, "  sphinxql ping")
	fmt.Fprintln(w, "  sphinxql query -index <index> -match <text>")
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "sphinxql init - Write a starter sphinxql.ini")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  sphinxql init [flags]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -url string             searchd URL (default sphinxql://127.0.0.1:9306)")
	fmt.Fprintln(w, "  -timeout string         dial/read/write timeout, e.g. 2s")
	fmt.Fprintln(w, "  -float-precision int    decimals for float literals (0 = shortest)")
	fmt.Fprintln(w, "  -force                  overwrite existing sphinxql.ini")
}
