// Gmail assistant lets a user operate their inbox through natural-language
// chat, over MCP, HTTP, websockets or a terminal REPL.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	configFile string
	envFile    string
	logFile    string
	httpAddr   string
	oauthURL   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "gmail-assistant",
		Short:         "Conversational assistant for a Gmail inbox",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "Path to YAML config file")
	pf.StringVar(&flags.envFile, "env-file", "", "Path to env file with OAuth and Gemini secrets")
	pf.StringVar(&flags.logFile, "log-file", "", "Path to log file, overrides log.file")
	pf.StringVar(&flags.httpAddr, "http-addr", "", "HTTP server listen addr, overrides http_addr")
	pf.StringVar(&flags.oauthURL, "oauth-url", "", "OAuth redirect URL, defaults to http://<listen addr>/oauth")

	root.AddCommand(newServeCmd(flags), newChatCmd(flags))

	return root
}
