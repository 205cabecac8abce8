package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	approveBookingHandler "github.com/m04kA/STY-ReservationService/internal/api/handlers/approve_booking"
	cancelBookingHandler "github.com/m04kA/STY-ReservationService/internal/api/handlers/cancel_booking"
	completeBookingsHandler "github.com/m04kA/STY-ReservationService/internal/api/handlers/complete_bookings"
	createBookingHandler "github.com/m04kA/STY-ReservationService/internal/api/handlers/create_booking"
	declineBookingHandler "github.com/m04kA/STY-ReservationService/internal/api/handlers/decline_booking"
	editBookingHandler "github.com/m04kA/STY-ReservationService/internal/api/handlers/edit_booking"
	getBookingHandler "github.com/m04kA/STY-ReservationService/internal/api/handlers/get_booking"
	getGuestBookingsHandler "github.com/m04kA/STY-ReservationService/internal/api/handlers/get_guest_bookings"
	getListingBookingsHandler "github.com/m04kA/STY-ReservationService/internal/api/handlers/get_listing_bookings"
	reviewBookingHandler "github.com/m04kA/STY-ReservationService/internal/api/handlers/review_booking"
	"github.com/m04kA/STY-ReservationService/internal/api/middleware"
	"github.com/m04kA/STY-ReservationService/internal/config"
	"github.com/m04kA/STY-ReservationService/internal/events"
	"github.com/m04kA/STY-ReservationService/internal/infra/broker/kafka"
	availabilityRepo "github.com/m04kA/STY-ReservationService/internal/infra/storage/availability"
	bookingRepo "github.com/m04kA/STY-ReservationService/internal/infra/storage/booking"
	listingServiceClient "github.com/m04kA/STY-ReservationService/internal/integrations/listingservice"
	bookingsService "github.com/m04kA/STY-ReservationService/internal/service/bookings"
	createBookingUC "github.com/m04kA/STY-ReservationService/internal/usecase/create_booking"
	editBookingUC "github.com/m04kA/STY-ReservationService/internal/usecase/edit_booking"
	"github.com/m04kA/STY-ReservationService/pkg/dbmetrics"
	"github.com/m04kA/STY-ReservationService/pkg/logger"
	"github.com/m04kA/STY-ReservationService/pkg/metrics"
	"github.com/m04kA/STY-ReservationService/pkg/simpletxmanager"
	"github.com/m04kA/STY-ReservationService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting STY-ReservationService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем клиента ListingService
	listingClient := listingServiceClient.NewClient(
		cfg.ListingService.URL,
		time.Duration(cfg.ListingService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (ListingService=%s timeout=%ds)",
		cfg.ListingService.URL, cfg.ListingService.Timeout)

	// Инициализируем publisher событий жизненного цикла
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, nil)
		if err != nil {
			log.Fatal("Failed to create kafka producer: %v", err)
		}
		defer producer.Close()
		publisher = kafka.NewEventPublisher(producer, cfg.Kafka.Topic)
		log.Info("Kafka event publisher initialized (brokers=%v, topic=%s)", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	} else {
		log.Info("Kafka disabled, lifecycle events will not be published")
	}

	// Инициализируем репозитории (с метриками или без)
	var (
		bookingRepository      *bookingRepo.Repository
		availabilityRepository *availabilityRepo.Repository
	)

	// Интерфейс для transaction manager (используется в сервисе и usecases)
	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
		DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		availabilityRepository = availabilityRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		availabilityRepository = availabilityRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервис жизненного цикла
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		availabilityRepository,
		listingClient,
		txMgr,
		publisher,
		log,
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		availabilityRepository,
		listingClient,
		txMgr,
		publisher,
		log,
	)

	editBookingUseCase := editBookingUC.NewUseCase(
		bookingRepository,
		availabilityRepository,
		listingClient,
		txMgr,
		publisher,
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	editBooking := editBookingHandler.NewHandler(editBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	approveBooking := approveBookingHandler.NewHandler(bookingSvc, log)
	declineBooking := declineBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	reviewBooking := reviewBookingHandler.NewHandler(bookingSvc, log)
	getGuestBookings := getGuestBookingsHandler.NewHandler(bookingSvc, log)
	getListingBookings := getListingBookingsHandler.NewHandler(bookingSvc, log)
	completeBookings := completeBookingsHandler.NewHandler(bookingSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsCollector))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// ============================================================
	// INTERNAL ROUTES (для планировщика, недоступны через шлюз)
	// ============================================================

	internalAPI := r.PathPrefix("/internal/v1").Subrouter()
	internalAPI.HandleFunc("/bookings/complete-expired", completeBookings.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Auth)

	// --- Бронирования ---
	// Создание бронирования
	api.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Получение бронирования по ID
	api.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Редактирование дат и состава гостей
	api.HandleFunc("/bookings/{bookingId}", editBooking.Handle).Methods(http.MethodPatch)

	// Решения хоста по бронированию
	api.HandleFunc("/bookings/{bookingId}/approve", approveBooking.Handle).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{bookingId}/decline", declineBooking.Handle).Methods(http.MethodPost)

	// Отмена бронирования
	api.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPost)

	// Отметка об отзыве после завершения проживания
	api.HandleFunc("/bookings/{bookingId}/review", reviewBooking.Handle).Methods(http.MethodPost)

	// История бронирований гостя
	api.HandleFunc("/guests/{guestId}/bookings", getGuestBookings.Handle).Methods(http.MethodGet)

	// --- Управление листингом (для хостов) ---
	// Список бронирований листинга
	api.HandleFunc("/listings/{listingId}/bookings", getListingBookings.Handle).Methods(http.MethodGet)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
