package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/librarium/librarium/catalog"
	"github.com/librarium/librarium/config"
	"github.com/librarium/librarium/core"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a sample catalog for local development",
	RunE:  runSeed,
}

var sampleBooks = []catalog.ImportRecord{
	{
		ISBN:        "9780141439518",
		Title:       "Pride and Prejudice",
		Author:      "Jane Austen",
		Category:    "Classic",
		TotalCopies: 3,
		Description: "A novel of manners.",
	},
	{
		ISBN:        "9780451524935",
		Title:       "1984",
		Author:      "George Orwell",
		Category:    "Dystopian",
		TotalCopies: 2,
		Description: "Big Brother is watching.",
	},
	{
		ISBN:        "9780547928227",
		Title:       "The Hobbit",
		Author:      "J.R.R. Tolkien",
		Category:    "Fantasy",
		TotalCopies: 4,
		Description: "There and back again.",
	},
	{
		ISBN:        "9780061120084",
		Title:       "To Kill a Mockingbird",
		Author:      "Harper Lee",
		Category:    "Classic",
		TotalCopies: 2,
	},
	{
		ISBN:        "9780441172719",
		Title:       "Dune",
		Author:      "Frank Herbert",
		Category:    "Science Fiction",
		TotalCopies: 3,
	},
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)

	store, closeStore, err := openStore(cmd, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	catalogSvc := catalog.NewService(store, catalog.WithLogger(logger))

	seeded := 0

	for _, record := range sampleBooks {
		_, err := catalogSvc.Import(cmd.Context(), record)
		if errors.Is(err, core.ErrConflict) {
			continue // already seeded
		}

		if err != nil {
			return err
		}

		seeded++
	}

	cmd.Printf("seeded %d books\n", seeded)

	return nil
}
