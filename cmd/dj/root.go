package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/karl2522/audiora/backend/internal/adapters/audius"
	"github.com/karl2522/audiora/backend/internal/adapters/gemini"
	"github.com/karl2522/audiora/backend/internal/adapters/sqlite"
	"github.com/karl2522/audiora/backend/internal/cache"
	"github.com/karl2522/audiora/backend/internal/core/services"
	"github.com/karl2522/audiora/backend/internal/worker"
)

var cfgFile string
var databasePath string
var userID string
var geminiAPIKey string
var verbose bool

var rootCmd = &cobra.Command{
	Use:   "dj",
	Short: "Audiora DJ: personalized playlists from your listening history",
	Long: `Builds a taste profile from locally recorded play events, gathers
candidates from the Audius catalog, scores them, and assembles a playlist.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default is $HOME/.audiora-dj.yaml)")

	rootCmd.PersistentFlags().StringVarP(
		&databasePath, "db", "d", "./audiora.db", "path to the SQLite listening-history database")
	viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))

	rootCmd.PersistentFlags().StringVarP(
		&userID, "user", "u", "", "user to act on")
	viper.BindPFlag("user", rootCmd.PersistentFlags().Lookup("user"))

	rootCmd.PersistentFlags().StringVar(
		&geminiAPIKey, "gemini_api_key", "", "Gemini API key (session advisor disabled when empty)")
	viper.BindPFlag("gemini_api_key", rootCmd.PersistentFlags().Lookup("gemini_api_key"))

	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".audiora-dj")
	}

	viper.SetEnvPrefix("audiora")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// See https://github.com/spf13/viper/pull/852
	rootCmd.Flags().VisitAll(func(f *pflag.Flag) {
		if viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			rootCmd.Flags().Set(f.Name, viper.GetString(f.Name))
		}
	})
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if viper.GetBool("verbose") {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

// app bundles the wired engine for one command invocation.
type app struct {
	store   *sqlite.Store
	catalog *audius.Client
	cache   *cache.Cache
	pool    *worker.Pool
	dj      *services.DJ
	library *services.Library
	logger  zerolog.Logger
}

// newApp wires the adapters into the engine. The returned cleanup stops the
// worker pool and sweeper and closes the database.
func newApp() (*app, func(), error) {
	logger := newLogger()

	store, err := sqlite.NewStore(viper.GetString("db"), logger)
	if err != nil {
		return nil, nil, err
	}

	catalog := audius.NewClient(audius.Config{Logger: logger})

	resultCache := cache.New(logger)
	resultCache.StartSweeper(cache.DefaultSweepInterval)

	pool := worker.NewPool(64, logger)
	pool.Start(runtime.NumCPU())

	cfg := services.DJConfig{
		History: store,
		Catalog: catalog,
		Cache:   resultCache,
		Pool:    pool,
		Logger:  logger,
	}
	if key := viper.GetString("gemini_api_key"); key != "" {
		cfg.Advisor = gemini.NewClient(gemini.Config{APIKey: key, Logger: logger})
	}

	a := &app{
		store:   store,
		catalog: catalog,
		cache:   resultCache,
		pool:    pool,
		dj:      services.NewDJ(cfg),
		library: services.NewLibrary(catalog, resultCache, logger),
		logger:  logger,
	}
	cleanup := func() {
		pool.Stop()
		resultCache.Stop()
		_ = store.Close()
	}
	return a, cleanup, nil
}

func requireUser() (string, error) {
	user := viper.GetString("user")
	if user == "" {
		return "", fmt.Errorf("--user is required")
	}
	return user, nil
}

func formatDuration(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
