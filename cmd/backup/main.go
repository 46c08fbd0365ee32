// backup exports or imports the journal backup document against the
// database without going through the web server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/vitos/trade_journal/internal/infrastructure/logger"
	"github.com/vitos/trade_journal/internal/infrastructure/storage"
	"github.com/vitos/trade_journal/internal/usecase"
)

func main() {
	dbPath := flag.String("db", "journal.db", "path to sqlite database")
	out := flag.String("export", "", "write a backup document to this file")
	in := flag.String("import", "", "restore from this backup document (replaces all data)")
	yes := flag.Bool("yes", false, "confirm a destructive import")
	flag.Parse()

	if (*out == "") == (*in == "") {
		fmt.Println("usage: backup -export <file> | -import <file> -yes [-db journal.db]")
		os.Exit(1)
	}

	log, err := logger.NewLogger("info")
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	store, err := storage.NewSQLiteStore(*dbPath)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	svc := usecase.NewBackupService(store, store, log)
	ctx := context.Background()

	if *out != "" {
		doc, err := svc.Export(ctx)
		if err != nil {
			fmt.Printf("Export failed: %v\n", err)
			os.Exit(1)
		}
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			fmt.Printf("Export failed: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			fmt.Printf("Export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Exported %d trades to %s\n", len(doc.Trades), *out)
		return
	}

	if !*yes {
		fmt.Println("Import replaces all trades, setups and symbols. Re-run with -yes to confirm.")
		os.Exit(1)
	}
	raw, err := os.ReadFile(*in)
	if err != nil {
		fmt.Printf("Import failed: %v\n", err)
		os.Exit(1)
	}
	doc, err := svc.Decode(ctx, raw)
	if err != nil {
		fmt.Printf("Import failed: %v\n", err)
		os.Exit(1)
	}
	if err := svc.Import(ctx, doc); err != nil {
		fmt.Printf("Import failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Imported %d trades from %s\n", len(doc.Trades), *in)
}
