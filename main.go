package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"

	"github.com/mindsettle/therapy-app/controllers"
	"github.com/mindsettle/therapy-app/cron"
	"github.com/mindsettle/therapy-app/db"
	"github.com/mindsettle/therapy-app/routes"
	"github.com/mindsettle/therapy-app/search"
	"github.com/mindsettle/therapy-app/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file. Using environment variables directly.")
	}

	gdb, err := db.Connect(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal(err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	rdb, err := search.NewClient(os.Getenv("REDIS_ADDR"))
	if err != nil {
		// The index is derived state; start degraded and let the outbox
		// catch it up once Redis is back.
		log.Printf("Warning: %v; therapist search will lag until Redis is reachable", err)
	}
	index := search.NewIndex(rdb)

	availabilitySvc := services.NewAvailabilityService(gdb)
	bookingSvc := services.NewBookingService(gdb)
	therapistSvc := services.NewTherapistService(gdb)
	searchSvc := services.NewSearchService(index)
	projector := services.NewProjector(gdb, index)

	jobs, err := cron.StartJobs(gdb, projector)
	if err != nil {
		log.Fatal(err)
	}

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Hello, World!")
	})
	routes.SetupAuthRoutes(app, controllers.NewAuthController(gdb))
	routes.SetupAvailabilityRoutes(app, controllers.NewAvailabilityController(availabilitySvc))
	routes.SetupBookingRoutes(app, controllers.NewBookingController(bookingSvc, gdb))
	routes.SetupTherapistRoutes(app, controllers.NewTherapistController(therapistSvc, searchSvc))

	go func() {
		if err := app.Listen(":8000"); err != nil {
			log.Fatal(err)
		}
	}()
	log.Println("Server started on port 8000")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	jobs.Stop()
	if err := app.Shutdown(); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	if err := rdb.Close(); err != nil {
		log.Printf("Redis close: %v", err)
	}
	if err := db.Close(gdb); err != nil {
		log.Printf("Database close: %v", err)
	}
}
