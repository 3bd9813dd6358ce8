package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"deeplx/internal/config"
	"deeplx/internal/logger"
	"deeplx/internal/server"
	"deeplx/internal/service"
	"deeplx/internal/storage"
)

var (
	cfgFile string
	cfg     *config.Config
	store   *storage.SQLiteStorage
	svc     *service.Service
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "deeplx",
	Short: "DeepLX - free DeepL translations through the mobile app endpoint",
	Long: `DeepLX talks to the DeepL mobile application's JSON-RPC endpoint without
API credentials by reproducing the app's requests byte for byte. It can run
as a one-shot CLI translator or as an HTTP server compatible with the
community DeepLX API.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger.Init(cfg.Log.Level, cfg.Log.Pretty)

		noHistory, _ := cmd.Flags().GetBool("no-history")
		if cfg.History.Enabled && !noHistory {
			store, err = storage.NewSQLiteStorage(cfg.History.Path)
			if err != nil {
				return fmt.Errorf("failed to open history database: %w", err)
			}
		}

		svc = service.NewService(cfg, store)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			store.Close()
		}
	},
}

var translateCmd = &cobra.Command{
	Use:   "translate <text>",
	Short: "Translate one text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, _ := cmd.Flags().GetString("source")
		target, _ := cmd.Flags().GetString("target")

		res, err := svc.Translate(cmd.Context(), strings.Join(args, " "), source, target)
		if err != nil {
			return err
		}

		fmt.Println(res.Translation)
		if res.DetectedLang != "" && source == "auto" {
			fmt.Printf("(detected source: %s)\n", res.DetectedLang)
		}
		for _, alt := range res.Alternatives {
			fmt.Printf("  alt: %s\n", alt)
		}
		return nil
	},
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the DeepLX-compatible HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv := server.New(cfg, svc)
		fmt.Printf("Listening on %s:%d\n", cfg.Server.Host, cfg.Server.Port)
		return srv.Run()
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent translations",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		translations, err := svc.History(limit)
		if err != nil {
			return err
		}

		for _, tr := range translations {
			fmt.Printf("[%s] %s -> %s\n  %s\n  %s\n",
				tr.CreatedAt.Format("2006-01-02 15:04"),
				tr.SourceLang, tr.TargetLang, tr.Text, tr.Translated)
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show history statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := svc.Stats()
		if err != nil {
			return err
		}

		fmt.Println("=== Translation History ===")
		fmt.Printf("Total translations: %d\n", stats.Total)
		fmt.Printf("Target languages:   %d\n", stats.TargetLangs)
		fmt.Printf("Today:              %d\n", stats.Today)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	translateCmd.Flags().StringP("source", "s", "auto", "source language (auto to detect)")
	translateCmd.Flags().StringP("target", "t", "EN", "target language")
	translateCmd.Flags().Bool("no-history", false, "do not record this translation")

	historyCmd.Flags().IntP("limit", "l", 20, "maximum number of entries to show")

	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
}
