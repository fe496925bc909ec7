package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"spellwrite/internal/audio"
	"spellwrite/internal/config"
	"spellwrite/internal/database"
	"spellwrite/internal/logger"
	"spellwrite/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export and import Spelling & Writing Practice data",
	Long: `Moves users, word lists, topics and writing entries between a database
and a JSON file. Word lists and topics are loaded into the app this way.

The database is chosen by DATABASE_TYPE (sqlite, postgres or mysql),
DATABASE_PATH for SQLite and DATABASE_URL for the others.`,
	SilenceUsage: true,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the database to a JSON file",
	Example: `  backup export
  backup export --output mybackup.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		return withBackupService(cmd.Context(), func(ctx context.Context, _ *config.Config, backups *service.BackupService) error {
			return handleExport(ctx, backups, output)
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a JSON backup into the database",
	Example: `  backup import --input word-lists.json --audio
  backup import --input backup.json --clear`,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		clearData, _ := cmd.Flags().GetBool("clear")
		yes, _ := cmd.Flags().GetBool("yes")
		generateAudio, _ := cmd.Flags().GetBool("audio")

		if clearData && !yes && !confirm(cmd, "WARNING: This will delete all existing data. Type 'yes' to confirm: ") {
			fmt.Fprintln(cmd.OutOrStdout(), "Import cancelled")
			return nil
		}

		return withBackupService(cmd.Context(), func(ctx context.Context, cfg *config.Config, backups *service.BackupService) error {
			result, err := handleImport(ctx, backups, input, clearData)
			if err != nil {
				return err
			}
			if !generateAudio {
				return nil
			}

			tts := audio.NewTTSService(cfg.AudioPath, cfg.TTSBaseURL)
			if err := tts.Prewarm(ctx, result.Words); err != nil {
				logger.Get().Warn("Some audio files could not be generated", zap.Error(err))
				return nil
			}
			logger.Get().Info("Audio generated", zap.Int("words", len(result.Words)))
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().String("output", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")

	importCmd.Flags().String("input", "", "Input file path")
	importCmd.Flags().Bool("clear", false, "Clear existing data before import (WARNING: destructive)")
	importCmd.Flags().Bool("yes", false, "Do not ask before clearing")
	importCmd.Flags().Bool("audio", false, "Generate speech audio for the imported words")
	_ = importCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(exportCmd, importCmd)
}

// withBackupService opens the configured database, migrates it and runs fn
func withBackupService(ctx context.Context, fn func(context.Context, *config.Config, *service.BackupService) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if err := logger.Initialize(cfg.Logger()); err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer logger.Sync()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	// Run migrations to ensure schema is up to date
	if err := db.RunMigrations(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return fn(ctx, cfg, service.NewBackupService(db))
}

func handleExport(ctx context.Context, backupService *service.BackupService, outputPath string) error {
	// Generate default filename if not provided
	if outputPath == "" {
		timestamp := time.Now().Format("20060102_150405")
		outputPath = fmt.Sprintf("backup_%s.json", timestamp)
	}

	dir := filepath.Dir(outputPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer file.Close()

	logger.Get().Info("Exporting database", zap.String("output", outputPath))
	data, err := backupService.Export(ctx, file)
	if err != nil {
		return err
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to flush backup file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat backup file: %w", err)
	}
	logger.Get().Info("Export complete",
		zap.Int("users", len(data.Users)),
		zap.Int("word_lists", len(data.WordLists)),
		zap.Int("topics", len(data.Topics)),
		zap.Int("writing_entries", len(data.WritingEntries)),
		zap.String("size", fmt.Sprintf("%.2f MB", float64(info.Size())/1024/1024)),
	)
	return nil
}

func handleImport(ctx context.Context, backupService *service.BackupService, inputPath string, clearData bool) (*service.ImportResult, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	logger.Get().Info("Importing database", zap.String("input", inputPath), zap.Bool("clear", clearData))
	result, err := backupService.Import(ctx, file, clearData)
	if err != nil {
		return nil, err
	}

	logger.Get().Info("Import complete",
		zap.Int("users", result.Users),
		zap.Int("skipped_users", result.SkippedUsers),
		zap.Int("word_lists", result.WordLists),
		zap.Int("topics", result.Topics),
		zap.Int("writing_entries", result.WritingEntries),
	)
	return result, nil
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(answer) == "yes"
}
