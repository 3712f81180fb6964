package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"coderoom/internal/api"
	"coderoom/internal/exec"
	"coderoom/internal/routers"
	"coderoom/internal/status"
	"coderoom/internal/utils"
)

var (
	defaultPort      = "5000"
	defaultExecURL   = exec.DefaultURL
	defaultStaticDir = "frontend/dist"

	listenAndServe = http.ListenAndServe
	exitFunc       = defaultExit
	exit           = os.Exit
)

func main() {
	if err := run(context.Background()); err != nil {
		exitFunc(err)
	}
}

func run(_ context.Context) error {
	logger := utils.NewLogger()

	execURL := os.Getenv("EXEC_URL")
	if execURL == "" {
		execURL = defaultExecURL
	}

	// The Redis status mirror is optional diagnostics; without an
	// address the coordinator runs purely in-memory.
	var reporter *status.Reporter
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		reporter = status.NewReporter(redisAddr, logger)
		defer reporter.Close()
	}

	h := api.NewHandlers(logger, execURL, reporter)

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
	)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	}))

	r.Mount("/", routers.New(h))

	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = defaultStaticDir
	}
	if _, err := os.Stat(staticDir); err == nil {
		r.NotFound(spaHandler(staticDir))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}
	addr := ":" + port
	log.Printf("coderoom listening on %s", addr)
	return listenAndServe(addr, r)
}

// spaHandler serves the built frontend, falling back to index.html for
// client-side routes.
func spaHandler(dir string) http.HandlerFunc {
	fs := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")
	return func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(dir, filepath.Clean(r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			fs.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, index)
	}
}

func defaultExit(err error) {
	log.Printf("server error: %v", err)
	exit(1)
}
