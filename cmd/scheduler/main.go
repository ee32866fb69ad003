package main

import (
	"context"
	"os"

	bookingshandler "roomsched/internal/bookings/handler"
	bookingsrepo "roomsched/internal/bookings/repository"
	bookingssvc "roomsched/internal/bookings/service"
	"roomsched/internal/bookings/validator"
	meetingshandler "roomsched/internal/meetings/handler"
	meetingssvc "roomsched/internal/meetings/service"
	roomshandler "roomsched/internal/rooms/handler"
	roomsrepo "roomsched/internal/rooms/repository"
	"roomsched/internal/sweeper"
	ticketshandler "roomsched/internal/tickets/handler"
	ticketsrepo "roomsched/internal/tickets/repository"
	ticketssvc "roomsched/internal/tickets/service"
	"roomsched/pkg/app"
	"roomsched/pkg/config"
	"roomsched/pkg/events"
	"roomsched/pkg/kafka"
	kafka_config "roomsched/pkg/kafka/config"
	"roomsched/pkg/lock"
	"roomsched/pkg/notify"
)

const ServiceName = "scheduler"

const bookingEventsTopic = "booking-events"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Scheduler service")

	publisher, producer := initPublisher(cfg)

	rooms := roomsrepo.NewMongoRoomRepository(cfg)
	bookings := bookingsrepo.NewMongoBookingRepository(cfg)
	tickets := ticketsrepo.NewMongoTicketRepository(cfg)
	locks := lock.NewMongoLockClient(cfg)

	optimizer := meetingssvc.NewMeetingOptimizer(rooms, bookings, cfg)
	bookingService := bookingssvc.NewBookingService(
		bookings,
		rooms,
		tickets,
		optimizer,
		locks,
		publisher,
		notify.NewMailer(cfg),
		validator.NewBookingValidator(cfg.Log),
		cfg,
	)
	ticketService := ticketssvc.NewTicketService(tickets, locks, cfg)

	releaseSweeper := sweeper.New(bookingService, cfg.SweepInterval, cfg.Log)
	releaseSweeper.Start(context.Background())

	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown(releaseSweeper.Stop)
	if producer != nil {
		serverApp.OnShutdown(func() {
			if err := producer.Close(); err != nil {
				cfg.Log.Error("Failed to close Kafka producer", "error", err)
			}
		})
	}
	serverApp.SetApp(
		bookingshandler.NewBookingHandler(bookingService, cfg.Log),
		meetingshandler.NewMeetingHandler(optimizer, cfg.Log),
		roomshandler.NewRoomHandler(rooms, cfg.Log),
		ticketshandler.NewTicketHandler(ticketService, cfg.Log),
	)
	serverApp.Run()
}

// initPublisher wires the Kafka publisher, falling back to a no-op when no
// brokers are configured so the service runs without a broker locally.
func initPublisher(cfg *config.Config) (events.Publisher, *kafka.Producer) {
	if os.Getenv(kafka_config.EnvKafkaBrokers) == "" {
		cfg.Log.Info("Kafka brokers not configured, booking events disabled")
		return events.NopPublisher{}, nil
	}

	producer, err := kafka.NewProducer(kafka_config.Load(), bookingEventsTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize Kafka producer", "error", err)
	}

	cfg.Log.Info("Kafka producer initialized", "topic", bookingEventsTopic)
	return events.NewKafkaPublisher(producer, cfg.Log), producer
}
