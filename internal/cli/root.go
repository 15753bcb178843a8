package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"taskhub/pkg/logger"
)

type options struct {
	configEnv string
	configDir string
	logLevel  string
}

// NewRootCmd builds the skillctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "skillctl",
		Short:         "Run NetOps skills and the task store demo from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configEnv, "env", "", "config environment (defaults to CONFIG_ENV or local)")
	root.PersistentFlags().StringVar(&opts.configDir, "config-dir", "", "config directory (defaults to CONFIG_DIR or ./config)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level for diagnostic output on stderr")

	root.AddCommand(
		newRunCmd(),
		newDomainsCmd(),
		newDemoCmd(opts),
	)
	return root
}

func (o *options) logger() *zap.Logger {
	l, err := logger.NewLogger(o.logLevel)
	if err != nil {
		return zap.NewNop()
	}
	return l
}
