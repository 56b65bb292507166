package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"talentlink_server/config"
	"talentlink_server/mq"
	"talentlink_server/routes"
	"talentlink_server/services"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize DynamoDB client and service
	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient(cfg.AWSRegion)
	dynamoService := &services.DynamoService{Client: dynamoClient}
	log.Println("DynamoDB client initialized.")

	// Initialize the notifier; without a broker URL, notifications are
	// logged locally.
	var notifier services.Notifier = services.LogNotifier{}
	if cfg.AMQPURL != "" {
		publisher, err := mq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Fatalf("Failed to connect to the notification broker: %v", err)
		}
		defer publisher.Close()
		notifier = &services.MQNotifier{Publisher: publisher}
		log.Printf("Notification broker connected, exchange %q", cfg.AMQPExchange)
	}

	// Initialize Services
	availabilityService := &services.AvailabilityService{Dynamo: dynamoService}
	offeringService := &services.OfferingService{Dynamo: dynamoService}
	slotService := &services.SlotService{Dynamo: dynamoService}
	bookingService := &services.BookingService{Dynamo: dynamoService, Notifier: notifier}
	swipeService := services.NewSwipeService(dynamoService, notifier, time.Duration(cfg.ReofferWindowDays)*24*time.Hour)
	feedService := services.NewFeedService(dynamoService, swipeService, cfg.FeedPageSize)

	// Initialize the router
	r := mux.NewRouter()

	// Register a welcome route
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Welcome to TalentLink")
	}).Methods("GET")

	// Register a health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy"}
		json.NewEncoder(w).Encode(response)
	}).Methods("GET")

	// Register routes
	routes.RegisterAvailabilityRoutes(r, availabilityService)
	routes.RegisterOfferingRoutes(r, offeringService)
	routes.RegisterBookingRoutes(r, bookingService, slotService)
	routes.RegisterSwipeRoutes(r, swipeService)
	routes.RegisterFeedRoutes(r, feedService)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, corsHandler))
}
