package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/martinemde/chatrelay/keys"
	"github.com/martinemde/chatrelay/promptlog"
	"github.com/martinemde/chatrelay/unifiedllm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           "chatrelay",
	Short:         "Send conversations to Claude, Groq or Hyperbolic",
	Long:          "chatrelay sends a conversation to one of several chat backends and prints a single normalized reply.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringP("provider", "p", unifiedllm.ProviderGroq, "Backend: claude, groq or hyperbolic")
	rootCmd.PersistentFlags().StringP("model", "m", "", "Model name (provider default if empty)")
	rootCmd.PersistentFlags().String("url", "", "Endpoint override (ignored by groq)")
	rootCmd.PersistentFlags().String("keys-file", keys.DefaultFile, "Credential file")
	rootCmd.PersistentFlags().String("log-dir", promptlog.DefaultDir, "Prompt log directory")
	rootCmd.PersistentFlags().String("log-kind", string(promptlog.KindReasoning), "Prompt log dataset: reasoning, normal or vision")
	rootCmd.PersistentFlags().Int("max-attempts", unifiedllm.DefaultMaxAttempts, "Attempts to obtain well-formed reasoning output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	_ = viper.BindPFlag("provider", rootCmd.PersistentFlags().Lookup("provider"))
	_ = viper.BindPFlag("model", rootCmd.PersistentFlags().Lookup("model"))
	_ = viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))
	_ = viper.BindPFlag("keys_file", rootCmd.PersistentFlags().Lookup("keys-file"))
	_ = viper.BindPFlag("log_dir", rootCmd.PersistentFlags().Lookup("log-dir"))
	_ = viper.BindPFlag("log_kind", rootCmd.PersistentFlags().Lookup("log-kind"))
	_ = viper.BindPFlag("max_attempts", rootCmd.PersistentFlags().Lookup("max-attempts"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "reading config %s: %v\n", cfgFile, err)
		}
	}
	viper.SetEnvPrefix("CHATRELAY")
	viper.AutomaticEnv()
}

// settings is the resolved command configuration.
type settings struct {
	Provider    string
	Backend     unifiedllm.BackendConfig
	KeysFile    string
	LogDir      string
	LogKind     string
	MaxAttempts int
	Verbose     bool
}

func loadSettings() (settings, error) {
	var backend unifiedllm.BackendConfig
	if err := viper.Unmarshal(&backend); err != nil {
		return settings{}, fmt.Errorf("decoding backend config: %w", err)
	}
	return settings{
		Provider:    viper.GetString("provider"),
		Backend:     backend,
		KeysFile:    viper.GetString("keys_file"),
		LogDir:      viper.GetString("log_dir"),
		LogKind:     viper.GetString("log_kind"),
		MaxAttempts: viper.GetInt("max_attempts"),
		Verbose:     viper.GetBool("verbose"),
	}, nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// buildBackend wires the credential store, prompt log and event listener
// into the selected adapter.
func buildBackend(s settings, logger *slog.Logger) (unifiedllm.Backend, error) {
	store, err := keys.Load(s.KeysFile)
	if err != nil {
		return nil, err
	}

	kind, err := promptlog.ParseKind(s.LogKind)
	if err != nil {
		return nil, err
	}
	sink := promptlog.New(s.LogDir, kind, promptlog.WithLogger(logger))
	if err := sink.Init(); err != nil {
		return nil, err
	}

	emitter := unifiedllm.NewEventEmitter()
	emitter.On(eventLogger(logger, s.Verbose))

	policy := unifiedllm.DefaultRetryPolicy()
	if s.MaxAttempts > 0 {
		policy.MaxAttempts = s.MaxAttempts
	}

	return unifiedllm.NewBackend(s.Provider, s.Backend,
		unifiedllm.WithLogger(logger),
		unifiedllm.WithKeyProvider(store),
		unifiedllm.WithPromptLogger(sink),
		unifiedllm.WithEventEmitter(emitter),
		unifiedllm.WithRetryPolicy(policy),
	)
}

// eventLogger reports request progress. Attempts and log bookkeeping are
// only shown when verbose.
func eventLogger(logger *slog.Logger, verbose bool) func(unifiedllm.Event) {
	return func(e unifiedllm.Event) {
		switch e.Type {
		case unifiedllm.EventContextTruncated:
			logger.Info("conversation shortened",
				"from_turns", e.Data["from_turns"], "to_turns", e.Data["to_turns"])
		case unifiedllm.EventReasoningRetry:
			logger.Info("re-requesting reasoning reply", "attempt", e.Data["attempt"], "reason", e.Data["reason"])
		case unifiedllm.EventFallback:
			logger.Warn("no usable reply", "reason", e.Data["reason"])
		default:
			if verbose {
				logger.Debug("event", "type", e.Type, "request_id", e.RequestID)
			}
		}
	}
}
