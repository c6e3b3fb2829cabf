package services

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// ReminderCron schedules the daily watering reminder job.
type ReminderCron struct {
	reminders *ReminderService
	spec      string
	cron      *cron.Cron
}

// NewReminderCron creates the scheduler. spec is a standard cron expression
// evaluated in timezone (the reminder's reference timezone), so "0 20 * * *"
// fires at 20:00 local plant-owner time regardless of server clock.
func NewReminderCron(reminders *ReminderService, spec, timezone string) (*ReminderCron, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid reminder timezone %q: %w", timezone, err)
	}

	return &ReminderCron{
		reminders: reminders,
		spec:      spec,
		cron:      cron.New(cron.WithLocation(loc)),
	}, nil
}

// Start registers and starts the daily job
func (rc *ReminderCron) Start() error {
	_, err := rc.cron.AddFunc(rc.spec, rc.run)
	if err != nil {
		return fmt.Errorf("scheduling reminder job: %w", err)
	}

	rc.cron.Start()
	log.Printf("✓ Watering reminder cron started (%s)", rc.spec)
	return nil
}

// Stop stops the scheduler
func (rc *ReminderCron) Stop() {
	rc.cron.Stop()
}

// run executes one scheduled pass. Fatal job errors only reach the log
// here; the manual HTTP trigger is the surface that reports them to a
// caller.
func (rc *ReminderCron) run() {
	log.Println("🔔 Scheduled watering reminder run starting")

	sent, err := rc.reminders.SendGroupedReminders()
	if err != nil {
		log.Printf("❌ Watering reminder run failed: %v", err)
		return
	}

	log.Printf("✓ Watering reminder run finished: %d sent", sent)
}
