package main

import (
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/kgarten/customer-pool/internal/infra/database"
	"github.com/kgarten/customer-pool/internal/infra/http/handlers"
	"github.com/kgarten/customer-pool/internal/infra/http/middleware"
	"github.com/kgarten/customer-pool/internal/infra/mail"
	"github.com/kgarten/customer-pool/internal/infra/queue"
	"github.com/kgarten/customer-pool/internal/usecase"
)

func main() {
	godotenv.Load()

	db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	tenants, err := database.NewTenantRegistryFromEnv()
	if err != nil {
		log.Fatalf("tenant registry: %v", err)
	}

	ingestMode := usecase.IngestLenient
	if v := os.Getenv("LEAD_INGEST_MODE"); v != "" {
		ingestMode, err = usecase.ParseIngestMode(v)
		if err != nil {
			log.Fatalf("LEAD_INGEST_MODE: %v", err)
		}
	}
	log.Printf("lead ingest mode: %s", ingestMode)

	policy := usecase.PolicyMonthly
	if v := os.Getenv("CONVERSION_POLICY"); v != "" {
		policy, err = usecase.ParseConversionPolicy(v)
		if err != nil {
			log.Fatalf("CONVERSION_POLICY: %v", err)
		}
	}

	// RabbitMQ is optional: without a broker, assignments still commit and
	// only the teacher notification is skipped.
	var notifier usecase.AssignmentNotifier
	var amqpConn *amqp.Connection
	if host := os.Getenv("RABBITMQ_HOST"); host != "" {
		rabbit, err := queue.NewRabbitMQ(
			os.Getenv("RABBITMQ_USER"),
			os.Getenv("RABBITMQ_PASS"),
			host,
			envOr("RABBITMQ_PORT", "5672"),
		)
		if err != nil {
			log.Fatalf("rabbitmq: %v", err)
		}
		defer rabbit.Conn.Close()
		defer rabbit.Ch.Close()
		amqpConn = rabbit.Conn
		notifier = queue.NewProducer(rabbit.Conn, rabbit.Ch)

		mailPort, _ := strconv.Atoi(envOr("MAIL_PORT", "587"))
		mailSender := mail.NewEmailSender(
			os.Getenv("MAIL_HOST"),
			mailPort,
			os.Getenv("MAIL_USER"),
			os.Getenv("MAIL_PASS"),
			envOr("MAIL_FROM", os.Getenv("MAIL_USER")),
		)

		worker := queue.NewWorker(rabbit.Ch, mailSender)
		go worker.Start(queue.QueueName)
	}

	leadRepo := database.NewLeadRepository(db)
	followUpRepo := database.NewFollowUpRepository(db)
	teacherRepo := database.NewTeacherRepository(db)
	assignmentRepo := database.NewAssignmentRepository(db)

	poolHandler := handlers.NewCustomerPoolHandler(
		usecase.NewListLeadsUseCase(leadRepo),
		usecase.NewLeadDetailUseCase(leadRepo, followUpRepo),
		usecase.NewCreateLeadUseCase(leadRepo, ingestMode),
		usecase.NewUpdateLeadUseCase(leadRepo, followUpRepo, teacherRepo),
		usecase.NewDeleteLeadUseCase(leadRepo),
		usecase.NewAssignLeadUseCase(leadRepo, teacherRepo, assignmentRepo, notifier),
		usecase.NewFollowUpUseCase(leadRepo, followUpRepo),
		usecase.NewStatsUseCase(leadRepo, policy),
	)
	healthHandler := handlers.NewHealthHandler(db, amqpConn)

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))
	r.Use(middleware.Metrics)

	r.Get("/healthz", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/customer-pool", func(r chi.Router) {
		r.Use(middleware.Identity(tenants))
		poolHandler.Routes(r)
	})

	port := envOr("PORT", "8080")
	log.Printf("customer pool API listening on :%s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
