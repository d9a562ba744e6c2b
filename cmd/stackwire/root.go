package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type options struct {
	configFile string
	file       string
	namespace  string
	name       string
	deployType string
	region     string
	account    string
	output     string
	logLevel   string
	logFormat  string
}

func newRootCommand() *cobra.Command {
	opts := &options{
		file:       "stackwire.yaml",
		deployType: "sandbox",
		output:     "yaml",
		logLevel:   "warn",
		logFormat:  "text",
	}
	v := viper.New()

	cmd := &cobra.Command{
		Use:           "stackwire",
		Short:         "Resolve backend definitions into deployment stacks",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(v, cmd, opts.configFile)
		},
	}

	fs := cmd.PersistentFlags()
	fs.StringVar(&opts.configFile, "config", "", "Path to a config file (default: stackwire.yaml in the working directory)")
	fs.StringVarP(&opts.file, "file", "f", opts.file, "Backend definition file")
	fs.StringVar(&opts.namespace, "namespace", "", "Backend namespace: the app id for branches, the project for sandboxes")
	fs.StringVar(&opts.name, "name", "", "Backend name: the branch or the sandbox owner")
	fs.StringVar(&opts.deployType, "type", opts.deployType, "Deployment type (sandbox, branch, standalone)")
	fs.StringVar(&opts.region, "region", "", "Deployment region (default: from the AWS shared config)")
	fs.StringVar(&opts.account, "account", "", "Deployment account id")
	fs.StringVarP(&opts.output, "output", "o", opts.output, "Output format")
	fs.StringVar(&opts.logLevel, "log-level", opts.logLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&opts.logFormat, "log-format", opts.logFormat, "Log format (text, json)")

	cmd.AddCommand(
		newSynthCommand(opts),
		newGraphCommand(opts),
	)
	return cmd
}

// loadConfig fills every flag the user did not set from STACKWIRE_*
// environment variables or the config file.
func loadConfig(v *viper.Viper, cmd *cobra.Command, explicitPath string) error {
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix("STACKWIRE")
	v.AutomaticEnv()

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
	} else {
		v.SetConfigName("stackwire")
		v.SetConfigType("yaml")
		for _, dir := range configSearchDirs() {
			v.AddConfigPath(dir)
		}
	}

	flagSets := []*pflag.FlagSet{cmd.Flags(), cmd.InheritedFlags()}
	for _, fs := range flagSets {
		if err := v.BindPFlags(fs); err != nil {
			return err
		}
	}
	if err := readConfigFile(v, explicitPath != ""); err != nil {
		return err
	}

	for _, fs := range flagSets {
		var setErr error
		fs.VisitAll(
			func(f *pflag.Flag) {
				if f.Changed || f.Name == "config" || !v.IsSet(f.Name) {
					return
				}
				val := fmt.Sprintf("%v", v.Get(f.Name))
				if val == "" {
					return
				}
				if err := f.Value.Set(val); err != nil && setErr == nil {
					setErr = fmt.Errorf("invalid value %q for %s: %w", val, f.Name, err)
				}
			},
		)
		if setErr != nil {
			return setErr
		}
	}
	return nil
}

func readConfigFile(v *viper.Viper, strict bool) error {
	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if errors.As(err, &cfgErr) && !strict {
			return nil
		}
		return err
	}
	return nil
}

func configSearchDirs() []string {
	dirs := []string{"."}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, "stackwire"))
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		dirs = append(dirs, filepath.Join(home, ".config", "stackwire"))
	}
	return dirs
}

func buildLogger(level, format string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("unknown log level %q (expected debug, info, warn, or error)", level)
	}

	handlerOpts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "text", "":
		return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (expected text or json)", format)
	}
}
