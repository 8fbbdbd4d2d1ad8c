package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mindsettle/therapy-app/models"
	"github.com/mindsettle/therapy-app/services"
	"github.com/mindsettle/therapy-app/utils"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// StartJobs schedules the outbox drainer and the session reminder job.
// The returned scheduler is stopped at shutdown.
func StartJobs(gdb *gorm.DB, projector *services.Projector) (*cron.Cron, error) {
	c := cron.New()

	// Drain frequently; the index should lag the authoritative store by
	// seconds, not minutes.
	_, err := c.AddFunc("@every 15s", func() {
		projector.Drain(context.Background())
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add outbox drain job: %w", err)
	}

	_, err = c.AddFunc("* * * * *", func() {
		sendSessionReminders(gdb)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add reminder job: %w", err)
	}

	c.Start()
	log.Println("Cron jobs started: outbox drain, session reminders")
	return c, nil
}

// sendSessionReminders mails customers whose confirmed session starts
// in about an hour.
func sendSessionReminders(gdb *gorm.DB) {
	now := time.Now()
	windowStart := now.Add(55 * time.Minute)
	windowEnd := now.Add(65 * time.Minute)

	var bookings []models.Booking
	err := gdb.Preload("Customer").Preload("Therapist").
		Where("status = ? AND date = ? AND start_time BETWEEN ? AND ?",
			models.StatusConfirmed,
			windowStart.Format("2006-01-02"),
			windowStart.Format("15:04:05"),
			windowEnd.Format("15:04:05")).
		Find(&bookings).Error
	if err != nil {
		log.Printf("Error fetching bookings for reminders: %v", err)
		return
	}

	for _, booking := range bookings {
		if err := sendReminderEmail(&booking); err != nil {
			log.Printf("Failed to send reminder for booking %d: %v", booking.ID, err)
			continue
		}
		log.Printf("Sent reminder for booking %d to %s", booking.ID, booking.Customer.Email)
	}
}

func sendReminderEmail(booking *models.Booking) error {
	subject := "Reminder: Upcoming Therapy Session"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>This is a reminder for your session scheduled in one hour.</p>
		<ul>
			<li><strong>Therapist:</strong> %s</li>
			<li><strong>Date:</strong> %s</li>
			<li><strong>Time:</strong> %s - %s</li>
		</ul>
		<p>If you need to reschedule or cancel, please do so as soon as possible.</p>
	`, booking.Customer.Name, booking.Therapist.Name,
		booking.Date, booking.StartTime, booking.EndTime)

	return utils.SendEmail(booking.Customer.Email, subject, body)
}
