// Command ocirun runs SQL and PL/SQL against a connect descriptor through
// the lite native client.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/oci-runtime/native/lite"
	"github.com/wippyai/oci-runtime/oci"
)

type options struct {
	profile
	profileName string
	configFile  string
	statement   string
	interactive bool
	verbose     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.DSN, "dsn", "", "Connect descriptor")
	flag.StringVar(&opts.User, "user", "", "User name")
	flag.StringVar(&opts.Password, "password", "", "Password")
	flag.StringVar(&opts.profileName, "profile", "", "Profile to load from the config file")
	flag.StringVar(&opts.configFile, "config", "ocirun.hcl", "Profile config file")
	flag.StringVar(&opts.statement, "e", "", "Statement to execute (reads stdin when empty)")
	flag.BoolVar(&opts.interactive, "i", false, "Interactive mode with TUI")
	flag.BoolVar(&opts.verbose, "v", false, "Debug logging to stderr")
	flag.Parse()

	if err := resolveProfile(&opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if opts.DSN == "" {
		fmt.Fprintln(os.Stderr, "Usage: ocirun -dsn <descriptor> -user <user> -password <pw> [-e statement]")
		fmt.Fprintln(os.Stderr, "       ocirun -profile <name> [-config file.hcl] [-e statement]")
		fmt.Fprintln(os.Stderr, "       ocirun -dsn <descriptor> -i  (interactive mode)")
		os.Exit(1)
	}

	if err := run(&opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// resolveProfile fills connection settings from the named profile.
// Flags given explicitly win over profile values.
func resolveProfile(opts *options) error {
	if opts.profileName == "" {
		return nil
	}
	profiles, err := loadProfiles(opts.configFile)
	if err != nil {
		return fmt.Errorf("load %s: %w", opts.configFile, err)
	}
	p, ok := profiles[opts.profileName]
	if !ok {
		return fmt.Errorf("profile %q not found in %s", opts.profileName, opts.configFile)
	}
	merged := *p
	if opts.DSN != "" {
		merged.DSN = opts.DSN
	}
	if opts.User != "" {
		merged.User = opts.User
	}
	if opts.Password != "" {
		merged.Password = opts.Password
	}
	opts.profile = merged
	return nil
}

func openEnvironment(opts *options) (*oci.Environment, error) {
	log := zap.NewNop()
	if opts.verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		log = l
	}

	clientOpts := []lite.Option{lite.WithLogger(log)}
	if opts.MaxTextSize > 0 {
		clientOpts = append(clientOpts, lite.WithMaxTextSize(opts.MaxTextSize))
	}
	loc, err := opts.location()
	if err != nil {
		return nil, err
	}
	if loc != nil {
		clientOpts = append(clientOpts, lite.WithTimeZone(loc))
	}

	envOpts := []oci.Option{oci.WithLogger(log)}
	if opts.HandleLimit > 0 {
		envOpts = append(envOpts, oci.WithHandleLimit(opts.HandleLimit))
	}
	return oci.New(lite.New(clientOpts...), envOpts...)
}

func run(opts *options) error {
	env, err := openEnvironment(opts)
	if err != nil {
		return fmt.Errorf("create environment: %w", err)
	}
	defer env.Close()

	conn, err := env.Connect(opts.DSN, opts.User, opts.Password)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	if opts.interactive {
		return runInteractive(conn, opts.DSN)
	}

	statements := []string{opts.statement}
	if opts.statement == "" {
		if statements, err = readStatements(os.Stdin); err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	}

	styled := term.IsTerminal(int(os.Stdout.Fd()))
	for _, text := range statements {
		res, err := execute(conn, text)
		if err != nil {
			return err
		}
		if err := printResult(os.Stdout, res, styled); err != nil {
			return err
		}
	}
	return conn.Commit()
}

// readStatements splits input on lines holding a single "/", the
// SQL*Plus terminator. A trailing ";" ends plain SQL statements too.
func readStatements(r io.Reader) ([]string, error) {
	var (
		out []string
		cur strings.Builder
	)
	flush := func() {
		s := strings.TrimSpace(cur.String())
		cur.Reset()
		if s != "" {
			out = append(out, s)
		}
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "/" {
			flush()
			continue
		}
		cur.WriteString(line)
		cur.WriteByte('\n')
		if strings.HasSuffix(trimmed, ";") && !inBlock(cur.String()) {
			s := strings.TrimSpace(cur.String())
			cur.Reset()
			cur.WriteString(strings.TrimSuffix(s, ";"))
			flush()
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	flush()
	return out, nil
}

// inBlock reports whether text opens a PL/SQL block, which only "/" ends.
func inBlock(text string) bool {
	fields := strings.Fields(strings.ToUpper(text))
	if len(fields) == 0 {
		return false
	}
	switch fields[0] {
	case "BEGIN", "DECLARE":
		return true
	case "CREATE":
		for _, f := range fields[1:] {
			switch f {
			case "PROCEDURE", "FUNCTION", "PACKAGE", "TRIGGER", "TYPE":
				return true
			case "TABLE", "INDEX", "VIEW", "SEQUENCE":
				return false
			}
		}
	}
	return false
}
