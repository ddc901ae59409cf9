package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	twitter "github.com/anatolykoptev/go-twitter-followers"
)

var configFile string

// RootCmd is the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "xfollowers",
	Short: "Extract the followers of an X (Twitter) profile",
	Long: `xfollowers resolves an X profile URL, pages through its followers with the
official API and exports them as CSV.

Credentials come from flags or XF_* environment variables: either a bearer
token (API v2) or the four OAuth1 values (API v1.1).`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if viper.GetBool("debug") {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := RootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "config file (yaml, json or toml)")
	flags.BoolP("debug", "d", false, "enable debug logging")
	flags.String("consumer-key", "", "OAuth1 consumer key")
	flags.String("consumer-secret", "", "OAuth1 consumer secret")
	flags.String("access-token", "", "OAuth1 access token")
	flags.String("access-token-secret", "", "OAuth1 access token secret")
	flags.String("bearer-token", "", "API v2 bearer token")
	flags.String("api-version", "", "force API version: 1.1 or 2 (default: picked from the credentials)")
	flags.String("proxy", "", "proxy URL for API and website requests")
	flags.String("api-url", "", "override the API base URL")
	flags.Int("max-pages", 3, "maximum follower pages per run")
	flags.Duration("page-delay", time.Second, "minimum delay between follower pages")
	flags.Duration("max-rate-limit-wait", 15*time.Minute, "longest wait for a rate-limit reset before giving up")
	flags.String("emails", "simulated", "email derivation: simulated, page or none")

	for _, name := range []string{
		"debug", "consumer-key", "consumer-secret", "access-token", "access-token-secret",
		"bearer-token", "api-version", "proxy", "api-url", "max-pages", "page-delay",
		"max-rate-limit-wait", "emails",
	} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			slog.Error("error loading config file", slog.String("file", configFile), slog.Any("error", err))
			os.Exit(1)
		}
	}

	viper.SetEnvPrefix("XF")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}

// credentials collects the credential fields from flags, env and config.
func credentials() twitter.Credentials {
	return twitter.Credentials{
		ConsumerKey:       viper.GetString("consumer-key"),
		ConsumerSecret:    viper.GetString("consumer-secret"),
		AccessToken:       viper.GetString("access-token"),
		AccessTokenSecret: viper.GetString("access-token-secret"),
		BearerToken:       viper.GetString("bearer-token"),
	}
}

// baseConfig builds the client configuration shared by all commands. Auth is
// left for the caller.
func baseConfig() (twitter.ClientConfig, error) {
	emails, err := emailExtractor(viper.GetString("emails"))
	if err != nil {
		return twitter.ClientConfig{}, err
	}
	return twitter.ClientConfig{
		BaseURL:          viper.GetString("api-url"),
		Proxy:            viper.GetString("proxy"),
		MaxPages:         viper.GetInt("max-pages"),
		PageDelay:        viper.GetDuration("page-delay"),
		MaxRateLimitWait: viper.GetDuration("max-rate-limit-wait"),
		Emails:           emails,
		MetricsHook: func(endpoint string, success, rateLimited bool) {
			slog.Debug("api call",
				slog.String("endpoint", endpoint),
				slog.Bool("success", success),
				slog.Bool("rate_limited", rateLimited))
		},
	}, nil
}

func emailExtractor(mode string) (twitter.EmailExtractor, error) {
	switch strings.ToLower(mode) {
	case "", "simulated":
		return &twitter.SimulatedExtractor{}, nil
	case "page":
		return &twitter.PageExtractor{}, nil
	case "none":
		return twitter.NopExtractor{}, nil
	}
	return nil, fmt.Errorf("unknown --emails mode %q (want simulated, page or none)", mode)
}

// newClient builds a client from the configured credentials.
func newClient(progress func(twitter.Stage, int)) (*twitter.Client, error) {
	version, err := twitter.ParseAPIVersion(viper.GetString("api-version"))
	if err != nil {
		return nil, err
	}
	auth, err := credentials().Authorizer(version)
	if err != nil {
		return nil, err
	}
	cfg, err := baseConfig()
	if err != nil {
		return nil, err
	}
	cfg.Auth = auth
	cfg.Progress = progress
	return twitter.NewClient(cfg)
}
