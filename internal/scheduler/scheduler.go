package scheduler

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/prasertw/voltbook/internal/config"
	"github.com/prasertw/voltbook/internal/domain/models"
	"github.com/prasertw/voltbook/internal/service/billing"
	"github.com/prasertw/voltbook/pkg/clients/notify"
)

// Scheduler runs the monthly missing-bill check: every subject in the meter
// mapping should have a record for the previous calendar month once its bill
// arrives, and the gaps are worth chasing.
type Scheduler struct {
	cron       *cron.Cron
	billingSvc *billing.Service
	meters     billing.MeterMapping
	notifier   *notify.Client
	cfg        config.ReminderConfig
	logger     *zap.Logger
}

// NewScheduler creates a new scheduler instance. notifier may be nil, which
// limits the reminder to log output.
func NewScheduler(cfg config.ReminderConfig, billingSvc *billing.Service, meters billing.MeterMapping, notifier *notify.Client, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		billingSvc: billingSvc,
		meters:     meters,
		notifier:   notifier,
		cfg:        cfg,
		logger:     logger,
	}
}

// Start registers the reminder job and starts the cron loop.
func (s *Scheduler) Start() {
	location, err := time.LoadLocation(s.cfg.Timezone)
	if err != nil {
		s.logger.Warn("invalid timezone, falling back to local",
			zap.String("timezone", s.cfg.Timezone), zap.Error(err))
		location = time.Local
	}

	s.cron = cron.New(cron.WithLocation(location))
	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.runMissingBillCheck); err != nil {
		s.logger.Error("failed to register reminder job", zap.Error(err))
		return
	}

	s.cron.Start()
	s.logger.Info("reminder scheduler started", zap.String("schedule", s.cfg.CronSchedule))
}

// Stop halts the cron loop. Safe to call when Start never ran.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) runMissingBillCheck() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	now := time.Now()
	period := models.Period{Month: int(now.Month()), Year: now.Year()}.Previous()

	subjects := make([]string, 0, len(s.meters))
	for userNumber := range s.meters {
		subjects = append(subjects, userNumber)
	}
	sort.Strings(subjects)

	var missing []string
	for _, userNumber := range subjects {
		record, err := s.billingSvc.LookupForEdit(ctx, userNumber, period.Month, period.Year)
		if err != nil {
			s.logger.Error("missing-bill check failed",
				zap.String("user_number", userNumber), zap.Error(err))
			return
		}
		if record == nil {
			missing = append(missing, userNumber)
		}
	}

	if len(missing) == 0 {
		s.logger.Info("all bills recorded",
			zap.Int("month", period.Month), zap.Int("year", period.Year))
		return
	}

	s.logger.Warn("missing bills detected",
		zap.Int("month", period.Month),
		zap.Int("year", period.Year),
		zap.Strings("user_numbers", missing))

	if s.notifier == nil {
		return
	}
	text := fmt.Sprintf("Missing electricity bills for %d/%d: %s",
		period.Month, period.Year, strings.Join(missing, ", "))
	if err := s.notifier.Send(ctx, text); err != nil {
		s.logger.Error("failed to push reminder", zap.Error(err))
	}
}
