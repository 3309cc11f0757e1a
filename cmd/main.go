package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/NebulaScout/TeamTrack/internal/api"
	"github.com/NebulaScout/TeamTrack/internal/authz"
	"github.com/NebulaScout/TeamTrack/internal/config"
	"github.com/NebulaScout/TeamTrack/internal/db"
	"github.com/NebulaScout/TeamTrack/internal/messages"
	d "github.com/NebulaScout/TeamTrack/internal/messages/discord"
	"github.com/NebulaScout/TeamTrack/internal/projects"
	"github.com/NebulaScout/TeamTrack/internal/roles"
	"github.com/NebulaScout/TeamTrack/internal/tasks"
	"github.com/gorilla/mux"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

func main() {
	log.Println("=== Starting TeamTrack ===")

	// env vars
	dbUrl := os.Getenv("DB_URL")
	address := os.Getenv("ADDRESS")
	masterToken := os.Getenv("MASTER_TOKEN")
	discordToken := os.Getenv("DISCORD_TOKEN")
	discordChannel := os.Getenv("DISCORD_CHANNEL")
	discordEnabled := os.Getenv("DISCORD_ENABLED")

	log.Println("Checking environment variables...")
	if dbUrl == "" || masterToken == "" {
		log.Fatalf("Missing required environment variables: DB_URL=%t, MASTER_TOKEN=%t",
			dbUrl != "", masterToken != "")
	}
	log.Println("Environment variables validated successfully")

	if address == "" {
		log.Println("Address not specified, setting to :8080")
		address = ":8080"
	} else {
		log.Printf("Using address: %s", address)
	}

	if err := config.EnsureDBFile(dbUrl); err != nil {
		log.Fatalf("Failed to prepare database file: %v", err)
	}

	log.Println("Initializing database connection...")
	gormDB, err := gorm.Open(sqlite.New(sqlite.Config{
		DriverName: "libsql",
		DSN:        dbUrl,
	}))
	if err != nil {
		log.Fatalf("Failed to create database connection: %v", err)
	}
	log.Println("Database connection established successfully")

	log.Println("Running database migrations...")
	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}
	log.Println("Database migrations completed successfully")

	database := db.NewDB(gormDB)
	log.Println("Database wrapper initialized")

	log.Println("Seeding permission catalog and role table...")
	registry := roles.Default()
	if err := database.EnsurePermissions(registry.Codes()); err != nil {
		log.Fatalf("Failed to seed permission catalog: %v", err)
	}
	if err := registry.Initialize(database); err != nil {
		log.Fatalf("Failed to initialize roles: %v", err)
	}
	log.Println("Role table initialized successfully")

	evaluator := authz.NewEvaluator(registry, database)
	projectService := projects.NewService(database, registry)
	taskService := tasks.NewService(database)

	if discordToken != "" && discordChannel != "" {
		log.Println("Configuring Discord notifications...")
		discordBot, err := d.NewDiscordBot(discordToken, discordEnabled == "true")
		if err != nil {
			log.Fatalf("Can't create discord bot: %s\n", err.Error())
		}

		providerGroup := messages.NewProviderGroup(discordBot)
		taskService.SetChangeHook(func(task *db.Task, entry *db.TaskHistory) {
			actor, err := database.GetUserByID(entry.ActorID)
			actorName := "unknown"
			if err == nil {
				actorName = actor.Username
			}

			providerGroup.SendMessage(messages.MessageConfig{
				Provider: "discord",
				Channel:  discordChannel,
				Text: messages.TaskChangeText(
					task.Title,
					string(entry.Field),
					entry.OldValue,
					entry.NewValue,
					actorName,
				),
			})
		})
		log.Println("Discord notifications enabled")
	}

	log.Println("Creating router...")
	router := mux.NewRouter()

	server := api.NewAPI(address, router, database, evaluator, projectService, taskService, masterToken)

	log.Println("Setting up signal handlers for graceful shutdown...")
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s\n", address)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	log.Println("TeamTrack is running. Press Ctrl+C to stop.")
	<-stop

	log.Println("Received shutdown signal, draining connections...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown did not finish cleanly: %v", err)
	}
	log.Println("=== TeamTrack stopped ===")
}
