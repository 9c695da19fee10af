package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/pagerouter/internal/config"
	"github.com/vango-dev/pagerouter/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌─┐┌─┐┌─┐┌─┐┬─┐┌─┐┬ ┬┌┬┐┌─┐┬─┐
  ├─┘├─┤│ ┬├┤ ├┬┘│ ││ │ │ ├┤ ├┬┘
  ┴  ┴ ┴└─┘└─┘┴└─└─┘└─┘ ┴ └─┘┴└─
`

// globalFlags are shared by every command.
type globalFlags struct {
	configPath  string
	logLevel    string
	errorFormat string
}

// Values of --error-format.
const (
	errorFormatText    = "text"
	errorFormatCompact = "compact"
	errorFormatJSON    = "json"
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		format, _ := rootCmd.PersistentFlags().GetString("error-format")
		printError(os.Stderr, err, format)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "pagerouter",
		Short: "Client-side page routing over a browser bridge",
		Long: `pagerouter serves a route table from pagerouter.json to browsers.

Each browser tab connects over a WebSocket; the server owns the tab's
history, evaluates route guards, loads content and renders it into the
page. Features include:

  • Ordered route registry with :param templates
  • History and hash routing modes
  • Content from files, HTTP, S3 or registered modules
  • Prometheus metrics`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to "+config.ConfigFileName+" (default: search from the working directory)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&flags.errorFormat, "error-format", errorFormatText, "Error output: text, compact or json")

	rootCmd.AddCommand(
		routesCmd(flags),
		matchCmd(flags),
		serveCmd(flags),
		versionCmd(),
	)

	return rootCmd
}

// loadConfig reads the file named by --config, or searches upward from
// the working directory.
func (f *globalFlags) loadConfig() (*config.Config, error) {
	if f.configPath != "" {
		return config.LoadFile(f.configPath)
	}
	return config.LoadFromWorkingDir()
}

// newLogger builds the slog logger for --log-level.
func (f *globalFlags) newLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(f.logLevel)); err != nil {
		return nil, errors.New("R010").
			WithDetailf("unknown log level %q", f.logLevel).
			WithSuggestion("Use debug, info, warn or error")
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// printBanner prints the ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// printError prints err in the given --error-format. Errors without a
// code are reported under the cli category in the compact and json forms.
func printError(w io.Writer, err error, format string) {
	var re *errors.RouterError
	if !stderrors.As(err, &re) {
		if format != errorFormatCompact && format != errorFormatJSON {
			fmt.Fprintf(w, "\033[31mError:\033[0m %s\n", err)
			return
		}
		re = &errors.RouterError{Category: errors.CategoryCLI, Message: err.Error()}
	}

	switch format {
	case errorFormatCompact:
		fmt.Fprintln(w, re.FormatCompact())
	case errorFormatJSON:
		fmt.Fprintln(w, re.FormatJSON())
	default:
		fmt.Fprintln(w, strings.TrimRight(re.Format(), "\n"))
	}
}
