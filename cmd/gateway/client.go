package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pricofy/omnicode/internal/client"
	"github.com/pricofy/omnicode/internal/domain"
	"github.com/pricofy/omnicode/internal/persistence"
)

var convertOpts struct {
	endpoint string
	apiKey   string
	from     string
	to       string
	user     string
	outDir   string
	asText   bool
}

// convertCmd converts a file through a running gateway and writes the export.
var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert a source file through a gateway endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		source, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		store, err := persistence.Open(ctx, cfg.DBDriver, cfg.DBDSN, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		c := client.New(client.NewHTTPGateway(convertOpts.endpoint, convertOpts.apiKey, 0), client.Options{
			Store:          store,
			DebounceWindow: cfg.DebounceWindow,
			Logger:         logger,
		})
		defer c.Close()

		if convertOpts.user != "" {
			if err := c.SignIn(ctx, domain.Authenticated{UserID: convertOpts.user}); err != nil {
				return err
			}
		}

		c.SetSource(string(source))
		c.SetSourceLang(convertOpts.from)
		c.SetTargetLang(convertOpts.to)

		if err := c.Convert(ctx); err != nil {
			st := c.State()
			return fmt.Errorf("%s: %s", st.ErrorTitle, st.ErrorDetail)
		}
		if c.Phase() == client.PhaseRejected {
			st := c.State()
			return fmt.Errorf("%s: %s", st.ErrorTitle, st.ErrorDetail)
		}

		kind := client.ExportNative
		if convertOpts.asText {
			kind = client.ExportText
		}
		exp, err := c.Export(kind, time.Now())
		if err != nil {
			return err
		}
		path := filepath.Join(convertOpts.outDir, exp.Filename)
		if err := os.WriteFile(path, exp.Content, 0o644); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

// historyCmd lists a user's recent conversions from the configured store.
var historyCmd = &cobra.Command{
	Use:   "history <user-id>",
	Short: "List recent conversions for a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		return printHistory(cmd.Context(), cmd, cfg.DBDriver, cfg.DBDSN, args[0], logger)
	},
}

func printHistory(ctx context.Context, cmd *cobra.Command, driver, dsn, userID string, logger *slog.Logger) error {
	store, err := persistence.Open(ctx, driver, dsn, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.GetHistory(ctx, userID)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CREATED\tFROM\tTO\tLINES")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n",
			e.CreatedAt.Format(time.RFC3339), e.SourceLang, e.TargetLang, countLines(e.TargetCode))
	}
	return w.Flush()
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := 1
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}

func init() {
	f := convertCmd.Flags()
	f.StringVar(&convertOpts.endpoint, "endpoint", "http://localhost:8080/api/convert", "gateway conversion endpoint")
	f.StringVar(&convertOpts.apiKey, "token", "", "bearer token sent to the endpoint")
	f.StringVar(&convertOpts.from, "from", domain.AutoDetect, "source language id")
	f.StringVar(&convertOpts.to, "to", domain.DefaultTargetLang, "target language id")
	f.StringVar(&convertOpts.user, "user", "", "user id; records the conversion in history")
	f.StringVar(&convertOpts.outDir, "out", ".", "directory for the exported file")
	f.BoolVar(&convertOpts.asText, "txt", false, "export as .txt instead of the target extension")
}
