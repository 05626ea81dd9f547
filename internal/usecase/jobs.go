package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/NasaVasa/reservewatch/internal/scheduler"
	"go.uber.org/zap"
)

const (
	ReserveCheckWork    = "reserve_trigger_check"
	ReserveCheckNowWork = "reserve_trigger_check_now"
	OrderUpdateWork     = "order_auto_update"
	OrderUpdateNowWork  = "order_auto_update_now"
)

// NotificationSwitch is the user-facing on/off switch for notifications.
type NotificationSwitch interface {
	Enabled() bool
	SetEnabled(enabled bool)
}

type Schedule struct {
	Interval time.Duration
	Flex     time.Duration
}

// Jobs owns the background work: it registers the periodic checks with the
// scheduler and serves run-now and reschedule requests from the bot and API.
type Jobs struct {
	scheduler     *scheduler.Scheduler
	reserveCheck  *ReserveCheck
	orderWatch    *OrderWatch
	notifications NotificationSwitch
	logger        *zap.Logger

	mu              sync.Mutex
	reserveSchedule Schedule
	orderSchedule   Schedule
}

func NewJobs(s *scheduler.Scheduler, reserveCheck *ReserveCheck, orderWatch *OrderWatch, notifications NotificationSwitch, reserveSchedule, orderSchedule Schedule, logger *zap.Logger) *Jobs {
	return &Jobs{
		scheduler:       s,
		reserveCheck:    reserveCheck,
		orderWatch:      orderWatch,
		notifications:   notifications,
		logger:          logger,
		reserveSchedule: reserveSchedule,
		orderSchedule:   orderSchedule,
	}
}

// Start registers both periodic jobs, keeping any that already run.
func (j *Jobs) Start() {
	j.scheduleReserveCheck(scheduler.Keep)
	j.scheduler.EnqueuePeriodic(OrderUpdateWork, j.orderSchedule.Interval, j.orderSchedule.Flex, scheduler.Keep, j.orderWatch.Run)
}

// RescheduleReserveCheck replaces the periodic reserve check with a new cadence.
func (j *Jobs) RescheduleReserveCheck(schedule Schedule) scheduler.WorkInfo {
	j.mu.Lock()
	j.reserveSchedule = schedule
	j.mu.Unlock()
	j.scheduleReserveCheck(scheduler.Replace)
	info, _ := j.scheduler.Info(ReserveCheckWork)
	return info
}

func (j *Jobs) scheduleReserveCheck(policy scheduler.Policy) bool {
	j.mu.Lock()
	schedule := j.reserveSchedule
	j.mu.Unlock()
	return j.scheduler.EnqueuePeriodic(ReserveCheckWork, schedule.Interval, schedule.Flex, policy, j.reserveCheck.Run)
}

// RunReserveCheckNow queues an immediate reserve check next to the periodic
// one. It reports false when a run-now check is already in flight.
func (j *Jobs) RunReserveCheckNow() bool {
	return j.scheduler.EnqueueOnce(ReserveCheckNowWork, scheduler.Keep, j.runReserveCheckNow)
}

// runReserveCheckNow also drops the periodic check when the run reports Stop.
func (j *Jobs) runReserveCheckNow(ctx context.Context) scheduler.Result {
	result := j.reserveCheck.Run(ctx)
	if result == scheduler.Stop {
		// Cancel waits on the scheduler lock, which Shutdown holds while it
		// waits for this run to return.
		go j.scheduler.Cancel(ReserveCheckWork)
	}
	return result
}

func (j *Jobs) RunOrderUpdateNow() bool {
	return j.scheduler.EnqueueOnce(OrderUpdateNowWork, scheduler.Keep, j.orderWatch.Run)
}

// CheckNow runs a reserve check synchronously and returns its report.
func (j *Jobs) CheckNow(ctx context.Context) (CheckReport, error) {
	return j.reserveCheck.Check(ctx)
}

func (j *Jobs) NotificationsEnabled() bool {
	return j.notifications.Enabled()
}

// SetNotifications flips the notification switch. Turning it back on
// restarts the reserve check, which stops itself while notifications are off.
func (j *Jobs) SetNotifications(enabled bool) {
	j.notifications.SetEnabled(enabled)
	if enabled && j.scheduleReserveCheck(scheduler.Keep) {
		j.logger.Info("reserve check resumed")
	}
}

// Status describes every known job, skipping the ones never scheduled.
func (j *Jobs) Status() []scheduler.WorkInfo {
	names := []string{ReserveCheckWork, ReserveCheckNowWork, OrderUpdateWork, OrderUpdateNowWork}
	out := make([]scheduler.WorkInfo, 0, len(names))
	for _, name := range names {
		if info, ok := j.scheduler.Info(name); ok {
			out = append(out, info)
		}
	}
	return out
}
