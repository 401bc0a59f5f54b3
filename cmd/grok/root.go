package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/metalagman/grok/internal/config"
	"github.com/metalagman/grok/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	defaultEnvFile = ".env"
	examplePrompt  = "Write a function that calculates the Fibonacci sequence."
)

// cliState is shared by all commands of one root command instance.
type cliState struct {
	v       *viper.Viper
	cfgFile string
	envFile string
	debug   bool

	cfg    config.Config
	logger zerolog.Logger
}

func newRootCmd() *cobra.Command {
	st := &cliState{
		v:      viper.New(),
		logger: zerolog.Nop(),
	}
	opts := &completeOptions{}

	rootCmd := &cobra.Command{
		Use:           "grok",
		Short:         "grok sends chat completion requests to the xAI API",
		Long:          "grok sends chat completion requests to the xAI API.\n\nRun without a subcommand to send an example prompt.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return st.init(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComplete(cmd, st, opts, examplePrompt)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&st.cfgFile, "config", "", "config file path (yaml or json)")
	pf.StringVar(&st.envFile, "env-file", defaultEnvFile, "dotenv file loaded before reading the environment")
	pf.BoolVar(&st.debug, "debug", false, "enable debug logging")
	pf.String("log-format", "", "log format: console or json")
	pf.String("endpoint", "", "chat completions endpoint url (overrides "+config.EnvEndpoint+")")
	pf.String("model", "", "model identifier")
	pf.Duration("timeout", 0, "timeout of a single attempt")
	pf.Int("max-attempts", 0, "total attempts per request")
	opts.bindFlags(pf)

	for key, flag := range map[string]string{
		"log.format":         "log-format",
		"api_endpoint":       "endpoint",
		"model":              "model",
		"timeout":            "timeout",
		"retry.max_attempts": "max-attempts",
	} {
		if err := st.v.BindPFlag(key, pf.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("bind %s flag: %v", flag, err))
		}
	}

	rootCmd.AddCommand(newCompleteCmd(st, opts))
	rootCmd.AddCommand(newInitCmd())
	return rootCmd
}

func (s *cliState) init(cmd *cobra.Command) error {
	if err := loadDotenv(s.envFile, cmd.Flags().Changed("env-file")); err != nil {
		return err
	}

	cfg, err := loadConfig(s.v, s.cfgFile)
	if err != nil {
		return err
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogOptions(s.debug))
	if err != nil {
		return err
	}

	s.cfg = cfg
	s.logger = logger
	logger.Debug().
		Str("endpoint", cfg.Endpoint).
		Str("model", cfg.Model).
		Dur("timeout", cfg.Timeout).
		Bool("api_key_set", cfg.APIKey != "").
		Msg("configuration loaded")
	return nil
}

// loadDotenv loads path into the process environment without overriding
// variables that are already set. A missing file is only an error when
// it was asked for explicitly.
func loadDotenv(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}
