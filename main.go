package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"

	"studybuddy/backend/api"
	"studybuddy/backend/config"
	"studybuddy/backend/database"
	"studybuddy/backend/middleware"
	"studybuddy/backend/security"
	"studybuddy/backend/services"
	"studybuddy/backend/storage"
)

func main() {
	// Parse command line flags
	noExit := flag.Bool("no-exit", false, "Don't exit after database reset")
	resetDB := flag.Bool("reset-db", false, "Drop the database and reseed the demo catalog")
	flag.Parse()

	cfg := config.Load()
	log.Printf("Running in %s environment", cfg.Server.Environment)

	isResetDB := os.Getenv("RESET_DB") == "true" || *resetDB
	if isResetDB {
		if cfg.IsProduction() {
			log.Fatal("Refusing to reset the database in production")
		}
		log.Println("Running in database reset mode")
		os.Setenv("RESET_DB", "true")
		if cfg.Database.Path != ":memory:" {
			for _, suffix := range []string{"", "-wal", "-shm"} {
				if err := os.Remove(cfg.Database.Path + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
					log.Fatalf("Failed to remove database file: %v", err)
				}
			}
		}
	}

	if err := database.InitDB(cfg.Database.Path); err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	if isResetDB && !*noExit {
		log.Println("Database reset completed successfully. Exiting.")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	encryptionKey := cfg.Security.EncryptionKey
	if encryptionKey == "" {
		if cfg.IsProduction() {
			log.Fatal("ENCRYPTION_KEY must be set in production")
		}
		log.Println("Warning: ENCRYPTION_KEY not set, using a default key. This is NOT secure for production!")
		encryptionKey = "default-key-for-development-only"
	}
	cipher, err := security.NewCipher(encryptionKey)
	if err != nil {
		log.Fatal(err)
	}

	app, err := services.NewFirebaseApp(ctx, cfg.Firebase)
	if err != nil {
		log.Printf("Warning: Failed to initialize Firebase: %v", err)
	}

	provider := newIdentityProvider(ctx, cfg, app)
	if cfg.Auth.Disabled {
		log.Println("Warning: AUTH_DISABLED set, requests act as the X-Dev-User header")
		middleware.InitializeAuth(nil)
	} else {
		middleware.InitializeAuth(provider)
	}

	store := newStorageClient(ctx, cfg, app)
	defer store.Close()

	favorites := services.FavoritesFactory{}
	if cfg.Redis.URL != "" {
		client, err := services.ConnectRedis(ctx, cfg.Redis.URL)
		if err != nil {
			log.Printf("Warning: %v, favorites fall back to SQLite", err)
		} else {
			defer client.Close()
			favorites.Redis = client
		}
	}

	broker := services.NewAuthStateBroker()
	profiles := services.NewProfileCache(broker)
	defer profiles.Close()

	server := api.NewServer(api.Deps{
		Config:    cfg,
		Auth:      services.NewAuthService(provider, broker),
		Profiles:  profiles,
		Catalog:   services.Catalog{},
		Favorites: favorites,
		Storage:   store,
		Cipher:    cipher,
	})

	services.StartScheduler(ctx, time.Minute, server.Sweepers()...)

	srv := &http.Server{
		Handler:      server.Handler(),
		Addr:         ":" + cfg.Server.Port,
		WriteTimeout: 60 * time.Second,
		ReadTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	log.Printf("Starting server on port %s...", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

// newIdentityProvider picks Firebase when configured and available, and the
// local credential store otherwise.
func newIdentityProvider(ctx context.Context, cfg *config.Config, app *firebase.App) services.IdentityProvider {
	if cfg.Auth.Provider == "firebase" {
		if app != nil {
			identity, err := services.NewFirebaseIdentity(ctx, app, cfg.Firebase.WebAPIKey)
			if err == nil {
				log.Println("Using Firebase authentication")
				return identity
			}
			log.Printf("Warning: Firebase authentication unavailable: %v", err)
		}
		log.Println("Warning: falling back to local authentication")
	}
	log.Println("Using local authentication")
	return services.NewLocalIdentity(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
}

// newStorageClient returns Firebase Storage when configured and local disk
// storage otherwise.
func newStorageClient(ctx context.Context, cfg *config.Config, app *firebase.App) storage.StorageClient {
	if cfg.Storage.Type == "firebase" && app != nil {
		client, err := storage.NewFirebaseStorageClient(ctx, app, cfg.Firebase.StorageBucket)
		if err == nil {
			log.Println("Storing uploads in Firebase Storage")
			return client
		}
		log.Printf("Warning: Firebase Storage unavailable: %v", err)
	}

	client, err := storage.NewLocalStorageClient(cfg.Storage.LocalPath)
	if err != nil {
		log.Fatalf("Failed to initialize local storage: %v", err)
	}
	log.Printf("Storing uploads under %s", cfg.Storage.LocalPath)
	return client
}
