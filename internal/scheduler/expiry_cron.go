package cron

import (
	"context"
	"time"

	"github.com/Dias221467/FoodShare/internal/jobs"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartExpirySweep runs the expiry sweeper once immediately and then
// every 10 minutes. A failed sweep is logged and retried on the next
// tick; it never takes down the process.
func StartExpirySweep(sweeper *jobs.ExpirySweeper) *cron.Cron {
	c := cron.New()

	run := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := sweeper.Sweep(ctx, time.Now()); err != nil {
			logrus.WithError(err).Error("Scheduled expiry sweep failed")
		}
	}

	c.AddFunc("@every 10m", run)
	c.Start()

	// Catch listings that expired while the server was down.
	go run()

	return c
}
