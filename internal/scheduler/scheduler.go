package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"FinAnalyst/internal/coordinator"
	"FinAnalyst/internal/model"
	"FinAnalyst/internal/notifier"
)

// Sender delivers a finished report.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Job is a query re-run on a cron schedule.
type Job struct {
	Name  string
	Cron  string
	Query string
}

// Scheduler manages the watchlist cron jobs. Each job keeps its own session so follow-up
// style queries resolve against that job's previous run only.
type Scheduler struct {
	Cron     *cron.Cron
	Handler  coordinator.QueryHandler
	Sender   Sender // nil logs reports instead of sending them
	Ctx      context.Context
	Sessions *coordinator.SessionStore
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, h coordinator.QueryHandler, sender Sender) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		Handler:  h,
		Sender:   sender,
		Ctx:      ctx,
		Sessions: coordinator.NewSessionStore(),
	}
}

// RegisterAll registers one cron entry per job.
func (s *Scheduler) RegisterAll(jobs []Job) error {
	for _, j := range jobs {
		job := j
		if _, err := s.Cron.AddFunc(job.Cron, func() { s.RunJob(job) }); err != nil {
			return fmt.Errorf("register job %s: %w", job.Name, err)
		}
		log.Printf("[INFO] watch job %q registered: %s", job.Name, job.Cron)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunAllNow executes every job once, in order (RUN_ON_START).
func (s *Scheduler) RunAllNow(jobs []Job) {
	for _, j := range jobs {
		s.RunJob(j)
	}
}

// RunJob runs a single job and delivers its report.
func (s *Scheduler) RunJob(job Job) {
	log.Printf("[INFO] running watch job %q", job.Name)
	session := s.Session(job.Name)

	rep, err := s.Handler.Handle(s.Ctx, model.NewQuery(job.Query), session)
	if err != nil {
		log.Printf("[ERROR] watch job %q: %v", job.Name, err)
		return
	}
	s.deliver(notifier.FormatReport(job.Name, rep))
}

// Session returns the session of a job, creating it on first use.
func (s *Scheduler) Session(name string) *coordinator.Session {
	return s.Sessions.Get(name)
}

func (s *Scheduler) deliver(text string) {
	if s.Sender == nil {
		log.Printf("[INFO] watch report:\n%s", text)
		return
	}
	if err := s.Sender.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
