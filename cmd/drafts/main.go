// Command drafts inspects and prunes markpad's crash-recovery drafts.
//
//	drafts [-db path] [-compression zstd] list
//	drafts show <id>
//	drafts delete <id>
//	drafts purge -before 2024-05-01
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/debemdeboas/markpad/internal/config"
	"github.com/debemdeboas/markpad/internal/db"
	"github.com/debemdeboas/markpad/internal/repository/editor"
)

// parseFuzzyTime accepts the timestamp layouts people tend to type.
func parseFuzzyTime(timeStr string) (time.Time, error) {
	timeFormats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		time.DateOnly,
	}

	for _, format := range timeFormats {
		if parsed, err := time.Parse(format, timeStr); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse time '%s' with any known format", timeStr)
}

func defaultDBPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, config.AppName, config.DraftsFileName)
}

func main() {
	path := flag.String("db", defaultDBPath(), "Path to the drafts database")
	compressionName := flag.String("compression", config.DefaultDraftsCompression, "Compression used for new drafts")
	flag.Parse()

	if flag.NArg() == 0 {
		log.Fatal("A command is required: list, show, delete or purge")
	}

	database := db.NewSQLite(*path)
	if err := database.InitDb(); err != nil {
		log.Fatalf("Error opening %s: %v", *path, err)
	}
	defer database.Close()

	repo, err := editor.NewDBRepository(database, *compressionName)
	if err != nil {
		log.Fatalf("Error opening drafts: %v", err)
	}

	args := flag.Args()[1:]
	switch cmd := flag.Arg(0); cmd {
	case "list":
		err = list(repo)
	case "show":
		err = withID(args, func(id editor.DraftId) error { return show(repo, id) })
	case "delete":
		err = withID(args, repo.DeleteDraft)
	case "purge":
		err = purge(repo, args)
	default:
		log.Fatalf("Unknown command %q", cmd)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func withID(args []string, fn func(editor.DraftId) error) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one draft id is required")
	}
	return fn(editor.DraftId(args[0]))
}

func list(repo editor.Repository) error {
	drafts, err := repo.ListDrafts()
	if err != nil {
		return err
	}
	for _, d := range drafts {
		path := d.Path
		if path == "" {
			path = "(untitled)"
		}
		fmt.Printf("%s\t%s\t%d bytes\t%s\n", d.Id, d.ModifiedAt.Local().Format(time.DateTime), len(d.Content), path)
	}
	return nil
}

func show(repo editor.Repository, id editor.DraftId) error {
	d, err := repo.GetDraft(id)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(d.Content)
	return err
}

// purge deletes every draft last modified before the given time.
func purge(repo editor.Repository, args []string) error {
	fs := flag.NewFlagSet("purge", flag.ExitOnError)
	before := fs.String("before", "", "Delete drafts modified before this time")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *before == "" {
		return fmt.Errorf("the -before flag is required")
	}

	cutoff, err := parseFuzzyTime(*before)
	if err != nil {
		return err
	}

	drafts, err := repo.ListDrafts()
	if err != nil {
		return err
	}

	deleted := 0
	for _, d := range drafts {
		if !d.ModifiedAt.Before(cutoff) {
			continue
		}
		if err := repo.DeleteDraft(d.Id); err != nil {
			log.Printf("Error deleting draft %s: %v", d.Id, err)
			continue
		}
		deleted++
	}
	log.Printf("Deleted %d of %d drafts", deleted, len(drafts))
	return nil
}
