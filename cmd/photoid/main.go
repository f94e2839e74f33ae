package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"photoid/internal/app"
	"photoid/internal/catalog"
	"photoid/internal/config"
	"photoid/internal/score"
	"photoid/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	// Global flags
	cfgPath string
	verbose bool

	// Quiz flags
	folders    []string
	include    []string
	exclude    []string
	questions  int
	choices    int
	dbPath     string
	individual string

	logger *zap.Logger
)

// rootCmd launches the interactive quiz.
var rootCmd = &cobra.Command{
	Use:   "photoid",
	Short: "photoid - photo identification trainer",
	Long: `photoid quizzes you on telling individual animals apart from photographs.

Photos are grouped by the part of each filename before the first underscore
(e.g. Asari_2024_03.jpg belongs to Asari). Scores accumulate across sessions
in a local database; run "photoid stats" to see your progress.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if len(cfg.Folders) == 0 {
			return fmt.Errorf("no photo folders configured; pass --folders or set them in %s", cfgPath)
		}

		p := tea.NewProgram(app.New(cfg, individual), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

// catalogCmd lists the individuals found in the photo folders.
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Scan the photo folders and list individuals",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		filter := catalog.Filter{Include: cfg.Include, Exclude: cfg.Exclude}
		cat, err := catalog.Build(cfg.Folders, filter, catalog.WithLogger(logger))
		if err != nil {
			return err
		}

		total := 0
		for _, id := range cat.IDs() {
			n := cat.Count(id)
			total += n
			fmt.Printf("%-20s %d photos\n", id, n)
		}
		fmt.Printf("\n%d individuals, %d photos\n", cat.Len(), total)
		return nil
	},
}

// statsCmd prints the cumulative score table and session history.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cumulative per-individual accuracy and session history",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		store, err := score.Open(cfg.Database)
		if err != nil {
			return err
		}
		defer store.Close()

		ledger, err := store.LoadLedger()
		if err != nil {
			return err
		}
		if ledger.Len() == 0 {
			fmt.Println("No scores recorded yet.")
			return nil
		}

		nameW := 0
		for _, id := range ledger.IDs() {
			if len(id) > nameW {
				nameW = len(id)
			}
		}

		fmt.Println(ui.TitleStyle.Render("Accuracy per individual"))
		for _, id := range ledger.IDs() {
			rec, _ := ledger.Get(id)
			acc, err := ledger.Accuracy(id)
			if err != nil {
				fmt.Printf("%-*s %s\n", nameW, id, ui.DimStyle.Render("no attempts"))
				continue
			}
			fmt.Printf("%-*s %s %3.0f%% (%d/%d)\n",
				nameW, id, ui.AccuracyBar(acc, 20), acc*100, rec.Correct, rec.Total)
		}

		history, err := store.History()
		if err != nil {
			return err
		}
		if len(history) > 0 {
			fmt.Println()
			fmt.Println(ui.TitleStyle.Render("Sessions"))
			for _, s := range history {
				fmt.Printf("%s  %s %3.0f%% (%d/%d)\n",
					s.FinishedAt.Format("2006-01-02 15:04"),
					ui.AccuracyBar(s.Accuracy(), 20), s.Accuracy()*100, s.Correct, s.Total)
			}
		}
		return nil
	},
}

// exportCmd writes the score table to CSV.
var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the score table to CSV",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		out := cfg.Export
		if len(args) == 1 {
			out = args[0]
		}
		if out == "" {
			return fmt.Errorf("no export path; pass a file argument or set export in the config")
		}

		store, err := score.Open(cfg.Database)
		if err != nil {
			return err
		}
		defer store.Close()

		ledger, err := store.LoadLedger()
		if err != nil {
			return err
		}

		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		defer f.Close()

		if err := score.ExportCSV(f, ledger); err != nil {
			return err
		}
		logger.Info("exported scores", zap.String("path", out), zap.Int("individuals", ledger.Len()))
		return nil
	},
}

// importCmd merges a CSV score table into the database.
var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Merge a CSV score table into the score database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer f.Close()

		imported, err := score.ImportCSV(f)
		if err != nil {
			return err
		}

		store, err := score.Open(cfg.Database)
		if err != nil {
			return err
		}
		defer store.Close()

		ledger, err := store.LoadLedger()
		if err != nil {
			return err
		}
		for id, rec := range imported.Snapshot() {
			cur, _ := ledger.Get(id)
			ledger.Set(id, score.Record{
				Correct: cur.Correct + rec.Correct,
				Total:   cur.Total + rec.Total,
			})
		}
		if err := store.SaveLedger(ledger); err != nil {
			return err
		}
		logger.Info("imported scores", zap.String("path", args[0]), zap.Int("individuals", imported.Len()))
		return nil
	},
}

// loadConfig reads the config file and layers changed flags on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("folders") {
		cfg.Folders = folders
	}
	if flags.Changed("include") {
		cfg.Include = include
	}
	if flags.Changed("exclude") {
		cfg.Exclude = exclude
	}
	if flags.Changed("questions") {
		cfg.Questions = questions
	}
	if flags.Changed("choices") {
		cfg.Choices = choices
	}
	if flags.Changed("db") {
		cfg.Database = dbPath
	}

	return cfg, cfg.Validate()
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "photoid.yaml"
	}
	return dir + "/photoid/photoid.yaml"
}

func main() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgPath, "config", defaultConfigPath(), "config file")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pf.StringSliceVar(&folders, "folders", nil, "photo folders to scan")
	pf.StringSliceVar(&include, "include", nil, "keep only photo paths containing one of these terms")
	pf.StringSliceVar(&exclude, "exclude", nil, "drop photo paths containing any of these terms")
	pf.StringVar(&dbPath, "db", "", "score database path")

	rootCmd.Flags().IntVarP(&questions, "questions", "n", 0, "number of questions to ask")
	rootCmd.Flags().IntVar(&choices, "choices", 0, "candidate answers per question")
	rootCmd.Flags().StringVar(&individual, "individual", "", "drill a single individual")

	rootCmd.AddCommand(catalogCmd, statsCmd, exportCmd, importCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
