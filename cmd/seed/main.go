// Package main provides a tool to seed the board with demo posts.
//
// It writes posts and replies in bulk through the store's batch writer,
// fixes up the denormalized reply counts, and indexes everything for
// search. Useful for demos and for exercising the feed with real volume.
//
// Usage:
//
//	go run ./cmd/seed --data-path ~/campuswall/data --posts 200
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/campuswall/campuswall-server/internal/domain"
	"github.com/campuswall/campuswall-server/internal/id"
	"github.com/campuswall/campuswall-server/internal/search"
	"github.com/campuswall/campuswall-server/internal/store"
)

var (
	dataPath  = flag.String("data-path", "./data", "Base path for persistent data")
	postCount = flag.Int("posts", 100, "Number of posts to create")
	batchSize = flag.Int("batch-size", 500, "Batch writer flush threshold")
)

var aliases = []string{
	"Anonymous", "NightOwl", "QuadWatcher", "CoffeeFiend", "LateSubmitter",
	"ThirdFloorGhost", "DiningHallCritic", "LibraryLurker",
}

var messages = []string{
	"the dining hall pasta is criminally underrated",
	"saw you in the library again, green backpack, third floor",
	"why does every group project have exactly one person doing the work",
	"exam schedule drop when",
	"the quad coffee cart changed my life",
	"whoever keeps taking two dryers at once, we see you",
	"lecture recordings should be mandatory, fight me",
	"anyone else just vibing through finals week",
}

var extraTagPool = []string{"#Finals", "#Library", "#DiningHall", "#Quad", "#Dorms"}

func main() {
	flag.Parse()

	boardPath := filepath.Join(*dataPath, "board")
	fmt.Printf("Opening board store at: %s\n", boardPath)

	s, err := store.New(boardPath, nil, store.NewNoopEmitter())
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	index, err := search.NewIndex(search.Options{DataPath: *dataPath})
	if err != nil {
		log.Fatalf("Failed to open search index: %v", err)
	}
	defer index.Close()

	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	topics := domain.Topics()

	seedUserID, err := id.Generate("user")
	if err != nil {
		log.Fatalf("Failed to generate seed user ID: %v", err)
	}

	batch := s.NewBatchWriter(*batchSize)
	posts := make([]*domain.Post, 0, *postCount)
	replyCounts := make(map[string]int)

	for i := 0; i < *postCount; i++ {
		postID, err := id.Generate("post")
		if err != nil {
			log.Fatalf("Failed to generate post ID: %v", err)
		}

		post := &domain.Post{
			UserID:  seedUserID,
			Alias:   aliases[rng.Intn(len(aliases))],
			Message: messages[rng.Intn(len(messages))],
			Topic:   topics[rng.Intn(len(topics))],
		}
		post.ID = postID

		if rng.Intn(3) == 0 {
			post.ExtraTags = []string{extraTagPool[rng.Intn(len(extraTagPool))]}
		}

		if err := batch.CreatePost(ctx, post); err != nil {
			log.Fatalf("Failed to batch post: %v", err)
		}
		posts = append(posts, post)

		// Roughly half the posts get a small reply thread.
		for r := 0; r < rng.Intn(4); r++ {
			replyID, err := id.Generate("reply")
			if err != nil {
				log.Fatalf("Failed to generate reply ID: %v", err)
			}

			reply := &domain.Reply{
				PostID:  postID,
				UserID:  seedUserID,
				Alias:   aliases[rng.Intn(len(aliases))],
				Message: messages[rng.Intn(len(messages))],
			}
			reply.ID = replyID

			if err := batch.CreateReply(ctx, reply); err != nil {
				log.Fatalf("Failed to batch reply: %v", err)
			}
			replyCounts[postID]++
		}
	}

	if err := batch.Flush(); err != nil {
		log.Fatalf("Failed to flush batch: %v", err)
	}

	// Batched writes bypass counter maintenance; fix the aggregates up
	// before indexing so search sees the real reply counts.
	for _, post := range posts {
		if replyCounts[post.ID] == 0 {
			continue
		}
		count, err := s.RecalculateReplyCount(ctx, post.ID)
		if err != nil {
			log.Fatalf("Failed to recalculate reply count for %s: %v", post.ID, err)
		}
		post.ReplyCount = count
	}

	if err := index.IndexPosts(posts); err != nil {
		log.Fatalf("Failed to index posts: %v", err)
	}

	fmt.Printf("Seeded %d posts (%d with replies) and indexed them for search\n",
		len(posts), len(replyCounts))
}
