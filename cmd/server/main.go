package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/UkralStul/blog-api/internal/domain"
	"github.com/UkralStul/blog-api/internal/handlers"
	"github.com/UkralStul/blog-api/internal/realtime"
	"github.com/UkralStul/blog-api/internal/storage"
	"github.com/UkralStul/blog-api/internal/storage/inmemory"
	"github.com/UkralStul/blog-api/internal/storage/postgres"
	"github.com/joho/godotenv"
)

const defaultPort = "8080"

func main() {
	// .env необязателен, при отсутствии берутся переменные окружения
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	storageType := flag.String("storage", "in-memory", "Storage type (in-memory or postgres)")
	forceSync := flag.Bool("force-sync", false, "Drop and recreate all tables on startup (postgres only)")
	flag.Parse()

	var store storage.Storage
	var err error

	log.Printf("Starting server with %s storage", *storageType)
	if *storageType == "postgres" {
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			log.Fatal("DATABASE_URL must be set for postgres storage")
		}
		store, err = postgres.New(dsn, *forceSync)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
	} else {
		store = inmemory.New()
		// Заполним данными для тестов
		fillWithMockData(store)
	}

	router := handlers.NewRouter(store, realtime.NewObserver())

	log.Printf("listening on http://localhost:%s/", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("server failed to start: %v", err)
	}
}

func fillWithMockData(s storage.Storage) {
	ctx := context.Background()

	// 1. Пара пользователей. Пароли хешируются при создании.
	alice, err := s.CreateUser(ctx, &domain.User{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password1234",
	})
	if err != nil {
		log.Fatalf("fillWithMockData: failed to create user: %v", err)
	}

	bob, err := s.CreateUser(ctx, &domain.User{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "password1234",
	})
	if err != nil {
		log.Fatalf("fillWithMockData: failed to create user: %v", err)
	}

	// 2. Пост и комментарий к нему.
	post, err := s.CreatePost(ctx, &domain.Post{
		Title:   "Taskmaster goes public!",
		PostURL: "https://taskmaster.com/press",
		UserID:  alice.ID,
	})
	if err != nil {
		log.Fatalf("fillWithMockData: failed to create post: %v", err)
	}

	_, err = s.CreateComment(ctx, &domain.Comment{
		CommentText: "Congrats, this is huge!",
		UserID:      bob.ID,
		PostID:      post.ID,
	})
	if err != nil {
		log.Fatalf("fillWithMockData: failed to create comment: %v", err)
	}

	// 3. Один голос, чтобы на главной был ненулевой vote_count.
	if _, err := s.UpvotePost(ctx, bob.ID, post.ID); err != nil {
		log.Fatalf("fillWithMockData: failed to upvote post: %v", err)
	}

	log.Printf("Mock data filled successfully. Created post ID: %d", post.ID)
}
