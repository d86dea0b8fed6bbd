package utils

import (
	"context"
	"errors"
	"log"

	"github.com/robfig/cron/v3"

	"bookshelf/store"
)

// StartAuditJob schedules a nightly pass over every user's book list and
// logs how many stored ids no longer resolve to a book document. Deleting a
// book by title leaves such ids behind on purpose; the job makes that drift
// visible without mutating anything.
func StartAuditJob(users store.UserStore, books store.BookStore) *cron.Cron {
	c := cron.New()

	// Run every day at midnight (00:00)
	c.AddFunc("0 0 * * *", func() { auditDanglingBooks(users, books) })

	c.Start()
	return c
}

func auditDanglingBooks(users store.UserStore, books store.BookStore) {
	ctx := context.Background()

	all, err := users.All(ctx)
	if err != nil {
		log.Printf("audit: error fetching users: %v", err)
		return
	}

	dangling := 0
	for _, user := range all {
		for _, bookID := range user.Books {
			_, err := books.FindByID(ctx, bookID)
			if errors.Is(err, store.ErrNotFound) {
				dangling++
				continue
			}
			if err != nil {
				log.Printf("audit: error resolving book %s: %v", bookID, err)
			}
		}
	}

	if dangling > 0 {
		log.Printf("audit: %d dangling book reference(s) across %d user(s)", dangling, len(all))
	}
}
