package main

import (
	"chat-sync/domain"
	"chat-sync/storage"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	what := flag.String("what", "channels", "What to list: channels or messages")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	stor := storage.NewBadgerStorage(db, slog.New(slog.DiscardHandler))
	defer stor.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	ctx := context.Background()
	channels, err := stor.ListChannels(ctx)
	if err != nil {
		log.Fatal(err)
	}
	names := lo.SliceToMap(channels, func(c domain.Channel) (domain.ChannelID, string) {
		return c.ID, c.Name
	})

	switch *what {
	case "channels":
		table.SetHeader([]string{"ID", "Name", "Created"})
		for _, c := range channels {
			table.Append([]string{c.ID.String(), c.Name, c.CreatedAt.Format(time.DateTime)})
		}
	case "messages":
		messages, err := stor.ListMessages(ctx)
		if err != nil {
			log.Fatal(err)
		}
		table.SetHeader([]string{"ID", "Channel", "At", "Author", "Body"})
		for _, m := range messages {
			channel, ok := names[m.ChannelID]
			if !ok {
				channel = "?" + m.ChannelID.String()
			}
			table.Append([]string{string(m.ID), channel, m.CreatedAt.Format(time.TimeOnly), m.Author, m.Body})
		}
	default:
		log.Fatalf("unknown -what %q", *what)
	}
	table.Render()
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)

	db, err := badger.Open(opts)
	if err != nil {
		// A crashed writer leaves a log to truncate, which needs a write open first.
		if strings.Contains(err.Error(), "Log truncate required") {
			repairOpts := badger.DefaultOptions(path).
				WithLogger(nil).WithBypassLockGuard(true)
			db, err = badger.Open(repairOpts)
			if err != nil {
				return nil, fmt.Errorf("repair failed: %w", err)
			}
			_ = db.Close()
			return badger.Open(opts)
		}
		return nil, err
	}
	return db, nil
}
