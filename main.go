package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"kestralog/cli"
	"kestralog/config"
	"kestralog/database"
	"kestralog/handlers"
	"kestralog/kestra"
	"kestralog/service"
)

func main() {
	// Load environment variables and parse CLI flags
	config.ParseFlags()

	logFile, err := setupLogging(config.Settings.LogFilePath)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if config.Settings.GatewayMode {
		mainGateway()
		return
	}

	mainCLI()
}

// newClientFromSettings builds a Kestra client from the global Settings.
func newClientFromSettings() *kestra.Client {
	client := kestra.NewClient(config.Settings.KestraURL, config.Settings.KestraTenant, config.Settings.KestraToken)
	client.SetTimeout(time.Duration(config.Settings.HTTPTimeoutSeconds) * time.Second)
	return client
}

// mainGateway runs the local gateway server
func mainGateway() {
	log.Println("Gateway starting up...")

	// Initialize the archive database
	if err := database.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if err := handlers.EnsureGatewayToken(config.Settings.GatewayToken); err != nil {
		log.Fatalf("Failed to store gateway token: %v", err)
	}

	// Initialize services
	service.InitServices(newClientFromSettings(), database.DB)

	// Set Gin mode
	if config.Settings.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Direct Gin logs to the configured log file
	gin.DefaultWriter = log.Writer()
	gin.DefaultErrorWriter = log.Writer()
	gin.DisableConsoleColor()

	// Create router
	r := gin.Default()

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	handlers.RegisterRoutes(r)

	addr := fmt.Sprintf("0.0.0.0:%d", config.Settings.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Gateway listening on http://127.0.0.1:%d (upstream %s)", config.Settings.Port, config.Settings.KestraURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for OS interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Gateway shutting down...")

	// Close database connection
	if err := database.CloseDB(); err != nil {
		log.Printf("Error closing database: %v", err)
	}

	// Gracefully shut down HTTP server
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Gateway exited")
}

// mainCLI runs the interactive CLI
func mainCLI() {
	// The local archive backs the `archive` commands; CLI still works
	// against the remote API if the database cannot be opened.
	dbReady := true
	if err := database.InitDB(); err != nil {
		log.Printf("Warning: archive database unavailable: %v", err)
		dbReady = false
	}

	cliConfig, err := cli.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading CLI config: %v\n", err)
		os.Exit(1)
	}

	client, serverName := resolveClient(cliConfig, config.Settings.KestraURLSet)
	if dbReady {
		service.InitServices(client, database.DB)
	}

	cliInstance, err := cli.NewCLI(client, cliConfig, serverName, config.Settings.SearchPageSize)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	cliInstance.Start()

	if dbReady {
		if err := database.CloseDB(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}
}

// resolveClient picks the server to talk to. An explicit --server/KESTRA_URL
// wins; otherwise the config file's default server is used.
func resolveClient(cliConfig *cli.Config, explicitServer bool) (*kestra.Client, string) {
	if explicitServer {
		return newClientFromSettings(), "(flags)"
	}

	server, err := cliConfig.GetDefaultServer()
	if err != nil {
		return newClientFromSettings(), "(flags)"
	}

	client := kestra.NewClient(server.URL, server.Tenant, server.Token)
	client.SetTimeout(time.Duration(config.Settings.HTTPTimeoutSeconds) * time.Second)
	return client, cliConfig.DefaultServer
}
