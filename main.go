package main

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"veo-studio-server/modules/common/config"
	"veo-studio-server/modules/common/database"
	redisClient "veo-studio-server/modules/common/redis"
	"veo-studio-server/modules/common/storage"
	"veo-studio-server/modules/progress"
	"veo-studio-server/modules/videogen"
)

var startTime = time.Now()

// CORS middleware
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// health check endpoint
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "veo-studio-server",
	})
}

// metrics endpoint
func getMetrics(worker *videogen.Worker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := worker.Stats()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"server": map[string]interface{}{
				"uptime":    time.Since(startTime).String(),
				"startTime": startTime,
			},
			"jobs": stats,
		})
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	rdb := redisClient.Connect(cfg)
	if rdb == nil {
		log.Fatal("❌ Failed to connect to Redis")
	}
	log.Println("✅ Redis connected successfully")

	dbClient := database.NewClient(rdb)
	if dbClient == nil {
		log.Fatal("❌ Failed to initialize database client")
	}

	storageClient := storage.NewClient(dbClient)
	hub := progress.NewHub()

	handler := videogen.NewHandler(rdb, dbClient, storageClient)

	worker := videogen.NewWorker(rdb, hub)
	if worker == nil {
		log.Fatal("❌ Failed to initialize Veo worker")
	}
	go worker.StartWorker()

	r := mux.NewRouter()
	r.Use(enableCORS)

	r.HandleFunc("/", healthCheck).Methods("GET")
	r.HandleFunc("/health", healthCheck).Methods("GET")
	r.HandleFunc("/metrics", getMetrics(worker)).Methods("GET")
	r.HandleFunc("/generate-video", handler.EnqueueVideo).Methods("POST", "OPTIONS")
	r.HandleFunc("/video-job", handler.GetJobStatus).Methods("GET")
	r.HandleFunc("/cancel-job", handler.CancelJob).Methods("POST", "OPTIONS")
	r.HandleFunc("/ws/progress", hub.HandleWebSocket)

	log.Printf("🚀 Veo Studio Server starting on port %s", cfg.Port)
	log.Printf("🎬 Generate endpoint: http://localhost:%s/generate-video", cfg.Port)
	log.Printf("📡 Progress endpoint: ws://localhost:%s/ws/progress", cfg.Port)
	log.Printf("❤️  Health check: http://localhost:%s/health", cfg.Port)
	log.Printf("📊 Metrics: http://localhost:%s/metrics", cfg.Port)

	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
