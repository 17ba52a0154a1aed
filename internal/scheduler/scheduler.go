package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"WeatherEdge/internal/calculator"
	"WeatherEdge/internal/collector"
	"WeatherEdge/internal/config"
	"WeatherEdge/internal/metrics"
	"WeatherEdge/internal/model"
	"WeatherEdge/internal/notifier"
	"WeatherEdge/internal/paper"
	"WeatherEdge/internal/recorder"
	"WeatherEdge/internal/strategy"
)

// Scheduler owns the cron registration and the periodic market cycle.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Engine    *strategy.Engine
	Book      *paper.Book
	Scorer    *paper.Scorer
	Notifier  *notifier.TelegramNotifier
	Recorder  recorder.Recorder
	Metrics   *metrics.Recorder
	Cfg       *config.Config
	Ctx       context.Context

	mu            sync.Mutex
	day           dayState
	startedAt     time.Time
	lastCycle     time.Time
	cycleCount    int
	lastOK        int
	lastSignals   int
	lastTomorrow  []notifier.Signal
	lastToday     []notifier.Signal
	resolvedCount int
	realizedCents int
	forceDigest   bool
}

// NewScheduler creates a new Scheduler. Cron runs on UTC; a cycle that
// outlives its interval is skipped rather than stacked.
func NewScheduler(ctx context.Context, col *collector.Collector, eng *strategy.Engine, book *paper.Book, scorer *paper.Scorer, tn *notifier.TelegramNotifier, rec recorder.Recorder, met *metrics.Recorder, cfg *config.Config) *Scheduler {
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cronLogger{})),
		),
		Collector: col,
		Engine:    eng,
		Book:      book,
		Scorer:    scorer,
		Notifier:  tn,
		Recorder:  rec,
		Metrics:   met,
		Cfg:       cfg,
		Ctx:       ctx,
		startedAt: time.Now(),
	}
}

// RegisterAll registers the periodic cycle and the midnight reset.
func (s *Scheduler) RegisterAll() error {
	spec := fmt.Sprintf("@every %dm", s.Cfg.Schedule.RunEveryMinutes)
	if _, err := s.Cron.AddFunc(spec, s.runCycle); err != nil {
		return fmt.Errorf("register cycle task: %w", err)
	}
	if _, err := s.Cron.AddFunc("0 0 0 * * *", s.midnightReset); err != nil {
		return fmt.Errorf("register midnight reset: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("interval_minutes", s.Cfg.Schedule.RunEveryMinutes).Msg("Scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Info().Msg("Scheduler stopped")
}

// RunCycleNow executes one cycle immediately, outside the cron cadence.
// force additionally sends the morning digest regardless of window, to
// smoke-test the Telegram wiring at startup.
func (s *Scheduler) RunCycleNow(force bool) {
	if force {
		s.mu.Lock()
		s.forceDigest = true
		s.mu.Unlock()
	}
	s.runCycle()
}

func (s *Scheduler) runCycle() {
	start := time.Now()
	etNow := start.In(model.EasternTime())
	etDay := etNow.Format(dayLayout)

	s.mu.Lock()
	if s.day.entriesFor != etDay {
		s.day.entriesFor = etDay
		s.Book.ClearDayEntries()
	}
	s.mu.Unlock()

	var (
		citiesOK int
		strong   int
		tomorrow []notifier.Signal
		today    []notifier.Signal
		rows     []recorder.SignalRow
	)

	for _, city := range s.Cfg.Cities {
		snap, err := s.Collector.Collect(s.Ctx, city, time.Now())
		if err != nil {
			switch {
			case errors.Is(err, collector.ErrNoMarkets):
				log.Debug().Str("city", city.Key).Msg("No open markets")
			case errors.Is(err, collector.ErrNoForecast):
				log.Warn().Str("city", city.Key).Msg("No NWS forecast, skipping city")
				s.Metrics.RecordCityFailure(city.Key)
			default:
				log.Warn().Err(err).Str("city", city.Key).Msg("City collection failed")
				s.Metrics.RecordCityFailure(city.Key)
			}
			continue
		}
		citiesOK++

		results := s.Engine.Analyze(city.Key, snap.Markets, &snap.Bundle, start, city.LSTOffset)
		for i := range results {
			g := &results[i]
			stats := calculator.CalculateModelStats(&snap.Bundle, g.MarketDate, g.Series)
			s.Metrics.RecordSignal(string(g.Confidence))
			rows = append(rows, recorder.NewSignalRow(start, etNow, city.Key, g, &snap.Bundle, stats))

			if g.MarketDate == model.DateTomorrow && !g.WasSettled && absInt(g.Gap) > s.Cfg.Gate.MinGap {
				strong++
			}

			if !stats.HasQuorum || !strategy.Admit(g, stats, s.gate()) {
				continue
			}
			sig := notifier.Signal{
				CityKey:  city.Key,
				CityName: city.Name,
				Tier1:    config.TierOne[city.Key],
				Result:   g,
				Stats:    stats,
			}
			if g.MarketDate == model.DateTomorrow {
				tomorrow = append(tomorrow, sig)
			} else {
				today = append(today, sig)
			}
			s.openPaper(city, g, stats, start)
		}
	}

	if citiesOK == 0 {
		log.Warn().Msg("No city data collected this cycle")
		s.finishCycle(start, citiesOK, strong, tomorrow, today)
		return
	}

	if len(rows) > 0 {
		if err := s.Recorder.AppendSignals(rows); err != nil {
			log.Error().Err(err).Msg("Could not record signal rows")
		}
	}

	s.maybeSendMorning(etNow, etDay, tomorrow, today)
	s.maybeSendEvening(etNow, etDay, tomorrow)
	s.pollOpenPositions()
	s.maybeScore(etNow, etDay)
	s.finishCycle(start, citiesOK, strong, tomorrow, today)
}

func (s *Scheduler) finishCycle(start time.Time, citiesOK, strong int, tomorrow, today []notifier.Signal) {
	elapsed := time.Since(start)

	s.mu.Lock()
	s.lastCycle = start
	s.cycleCount++
	s.lastOK = citiesOK
	s.lastSignals = strong
	s.lastTomorrow = tomorrow
	s.lastToday = today
	s.mu.Unlock()

	s.Metrics.RecordCycle(elapsed.Seconds())
	log.Info().
		Int("cities_ok", citiesOK).
		Int("cities", len(s.Cfg.Cities)).
		Int("signals", strong).
		Int("open_positions", s.Book.Len()).
		Str("elapsed", fmt.Sprintf("%.1fs", elapsed.Seconds())).
		Msg("Cycle complete")
}

func (s *Scheduler) gate() strategy.GateConfig {
	return strategy.GateConfig{
		MinGap:          s.Cfg.Gate.MinGap,
		MaxSpread:       s.Cfg.Gate.MaxSpread,
		ConsensusMargin: s.Cfg.Gate.ConsensusMargin,
	}
}

// openPaper enters a simulated position for an admitted result, honoring
// the paper config. The book itself drops duplicate entries.
func (s *Scheduler) openPaper(city config.City, g *model.GapResult, stats model.ModelStats, now time.Time) {
	if s.Cfg.Paper.Disabled {
		return
	}
	if g.MarketDate == model.DateTomorrow && s.Cfg.Paper.SkipTomorrow {
		return
	}

	pos := s.Book.Open(city.Key, g, stats, now)
	if pos == nil {
		return
	}
	if err := s.Recorder.InsertPaperEntry(recorder.NewPaperEntryRow(pos)); err != nil {
		log.Error().Err(err).Str("ticker", pos.Ticker).Msg("Could not record paper entry")
	}
	s.Metrics.RecordPaperEntry()
}

// pollOpenPositions asks the exchange for a result on every open ticker
// and closes the ones that settled. A failed fetch skips that ticker only.
func (s *Scheduler) pollOpenPositions() {
	open := s.Book.OpenTickers()
	for i, ticker := range open {
		if i > 0 && !s.pause(150*time.Millisecond) {
			return
		}
		outcome, provisional, err := s.Collector.Markets.FetchResult(s.Ctx, ticker)
		if err != nil {
			log.Warn().Err(err).Str("ticker", ticker).Msg("Result check failed")
			continue
		}
		tr := s.Book.Resolve(ticker, outcome, time.Now())
		if tr == nil {
			continue
		}
		if provisional {
			log.Info().Str("ticker", ticker).Msg("Settled on a provisional result")
		}
		exit := tr.ExitTime.Format("2006-01-02 15:04:05")
		if err := s.Recorder.CompletePaperTrade(tr.ID, exit, string(tr.Result), tr.PnLCents); err != nil {
			log.Error().Err(err).Str("ticker", ticker).Msg("Could not record paper exit")
		}
		s.Metrics.RecordPaperResolved(string(tr.Result), tr.PnLCents)

		s.mu.Lock()
		s.resolvedCount++
		s.realizedCents += tr.PnLCents
		s.mu.Unlock()
	}
}

func (s *Scheduler) maybeSendMorning(etNow time.Time, etDay string, tomorrow, today []notifier.Signal) {
	s.mu.Lock()
	force := s.forceDigest
	s.forceDigest = false
	sent := s.day.morningFor == etDay
	s.mu.Unlock()

	if !force && (!morningWindow(etNow) || sent) {
		return
	}

	s.trySend(notifier.FormatMorningDigest(etNow, cloneSignals(tomorrow), cloneSignals(today)))
	s.Metrics.RecordAlertSent("morning")

	s.mu.Lock()
	s.day.morningFor = etDay
	s.mu.Unlock()
}

func (s *Scheduler) maybeSendEvening(etNow time.Time, etDay string, tomorrow []notifier.Signal) {
	s.mu.Lock()
	sent := s.day.eveningFor == etDay
	s.mu.Unlock()

	if !eveningWindow(etNow) || sent {
		return
	}

	s.trySend(notifier.FormatEveningDigest(etNow, cloneSignals(tomorrow)))
	s.Metrics.RecordAlertSent("evening")

	s.mu.Lock()
	s.day.eveningFor = etDay
	s.mu.Unlock()
}

// maybeScore runs the daily resolution scorer once the 9:30 ET mark has
// passed. The day is claimed before running so an overlapping command
// cannot double-score; a failed run gives the claim back for the next
// cycle.
func (s *Scheduler) maybeScore(etNow time.Time, etDay string) {
	if !resolveDue(etNow) {
		return
	}

	s.mu.Lock()
	if s.day.resolveFor == etDay {
		s.mu.Unlock()
		return
	}
	s.day.resolveFor = etDay
	s.mu.Unlock()

	summary, err := s.Scorer.Run(s.Ctx, etNow)
	if err != nil {
		log.Error().Err(err).Msg("Resolution scoring failed")
		s.mu.Lock()
		s.day.resolveFor = ""
		s.mu.Unlock()
		return
	}
	if summary.Total > 0 {
		s.trySend(notifier.FormatScoreSummary(summary))
		s.Metrics.RecordAlertSent("scorecard")
	}
}

func (s *Scheduler) midnightReset() {
	s.Book.LogMidnightStatus()
	s.mu.Lock()
	s.day.resetForNewDay(time.Now().UTC().Format(dayLayout))
	s.mu.Unlock()
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/status":
		return notifier.FormatStatus(s.statusInfo(), time.Now())
	case "/paper":
		s.mu.Lock()
		resolved, cents := s.resolvedCount, s.realizedCents
		s.mu.Unlock()
		return notifier.FormatPaperStatus(s.Book.Positions(), resolved, cents)
	case "/digest":
		etNow := time.Now().In(model.EasternTime())
		s.mu.Lock()
		tomorrow := cloneSignals(s.lastTomorrow)
		today := cloneSignals(s.lastToday)
		s.mu.Unlock()
		return notifier.FormatMorningDigest(etNow, tomorrow, today)
	case "/resolve":
		etNow := time.Now().In(model.EasternTime())
		summary, err := s.Scorer.Run(s.Ctx, etNow)
		if err != nil {
			return fmt.Sprintf("Scoring failed: %v", err)
		}
		s.mu.Lock()
		s.day.resolveFor = etNow.Format(dayLayout)
		s.mu.Unlock()
		return notifier.FormatScoreSummary(summary)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) statusInfo() notifier.StatusInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return notifier.StatusInfo{
		StartedAt:   s.startedAt,
		LastCycle:   s.lastCycle,
		CycleCount:  s.cycleCount,
		CitiesOK:    s.lastOK,
		CityCount:   len(s.Cfg.Cities),
		SignalCount: s.lastSignals,
		OpenPaper:   s.Book.Len(),
	}
}

// pause sleeps unless the context ends first; false means shutdown.
func (s *Scheduler) pause(d time.Duration) bool {
	select {
	case <-s.Ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("Could not send notification")
	}
}

// cloneSignals copies a signal list so the formatter's in-place sort never
// touches the cached cycle state.
func cloneSignals(signals []notifier.Signal) []notifier.Signal {
	if signals == nil {
		return nil
	}
	return append([]notifier.Signal(nil), signals...)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// cronLogger adapts the cron library's logging to zerolog. It only speaks
// when the skip-if-running chain drops an overlapping cycle.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Info().Msgf("cron: %s %v", msg, keysAndValues)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Msgf("cron: %s %v", msg, keysAndValues)
}
