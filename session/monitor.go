package session

import (
	"context"
	"fmt"

	"eduadmin-client/token"

	"github.com/robfig/cron"
)

// startMonitorLocked arms the expiry poller for the given token, replacing
// any previous schedule so a timer can never act on a token it no longer
// watches. Caller must hold s.mu.
func (s *SessionService) startMonitorLocked(watched string) {
	s.stopMonitorLocked()
	if watched == "" {
		return
	}

	job := cron.New()
	schedule := fmt.Sprintf("@every %s", s.config.MonitorInterval)
	if err := job.AddFunc(schedule, func() { s.checkToken(watched) }); err != nil {
		s.logger.Errorf("Failed to schedule token monitor: %v", err)
		return
	}
	job.Start()
	s.cronJob = job

	s.logger.Debugf("Token monitor armed (%s)", schedule)
}

// stopMonitorLocked cancels the poller. Caller must hold s.mu.
func (s *SessionService) stopMonitorLocked() {
	if s.cronJob != nil {
		s.cronJob.Stop()
		s.cronJob = nil
	}
}

// checkToken is one poll tick. A tick for a token that is no longer current
// is ignored; an expired or undecodable current token is announced on the
// broadcast so every listener, this service included, runs the same forced
// logout path as an out-of-band rejection would trigger.
func (s *SessionService) checkToken(watched string) {
	s.mu.RLock()
	current := s.token
	s.mu.RUnlock()

	if current != watched {
		return
	}

	claims, err := token.Decode(watched)
	if err != nil {
		s.logger.Warnf("Active token became undecodable (%v), announcing expiry", err)
		s.announceExpiry()
		return
	}
	if claims.Expired() {
		s.logger.Info("Active token expired, announcing expiry")
		s.announceExpiry()
	}
}

// announceExpiry fires the local broadcast and, when a remote announcer is
// wired, tells every other process sharing the session store as well. The
// remote round trip republishes locally too; handlers are idempotent.
func (s *SessionService) announceExpiry() {
	s.expired.Publish()

	s.mu.RLock()
	announce := s.announce
	s.mu.RUnlock()

	if announce == nil {
		return
	}
	if err := announce(context.Background()); err != nil {
		s.logger.Warnf("Failed to announce expiry to remote listeners: %v", err)
	}
}
