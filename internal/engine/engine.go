// Package engine composes the wallet, progression, combo, playback,
// battle, and event log subsystems into one live broadcast session. All
// state transitions for a session run under a single mutex; subsystems
// stay pure and the engine alone owns timers.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/audit"
	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/battle"
	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/combo"
	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/domain"
	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/eventlog"
	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/playback"
	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/progression"
	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/wallet"
	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/pkg/scorefeed"
)

var (
	// ErrUnknownGift is returned for gift ids not in the catalog
	ErrUnknownGift = errors.New("unknown gift")
	// ErrClosed is returned for operations on a closed session
	ErrClosed = errors.New("session closed")
)

// Config tunes one session's engine
type Config struct {
	ComboWindow     time.Duration
	BattleTick      time.Duration
	LogCap          int
	StartingBalance int64
}

// Hooks deliver engine output to the attached surface (the WebSocket
// fan-out in production, recorders in tests). All hooks are optional.
// Hooks may fire while the engine mutex is held and must not call back
// into the engine.
type Hooks struct {
	Play       func(token domain.PlayToken)
	LogEntry   func(entry domain.LogEntry)
	ComboReset func()
	Battle     func(state domain.BattleState)
}

// SendGiftResult reports the outcome of a successful gift send
type SendGiftResult struct {
	Gift       domain.Gift     `json:"gift"`
	Balance    int64           `json:"balance"`
	ComboCount int             `json:"combo_count"`
	Level      int             `json:"level"`
	LeveledUp  bool            `json:"leveled_up"`
	Entry      domain.LogEntry `json:"entry"`
}

type viewerState struct {
	name        string
	wallet      *wallet.Wallet
	progression *progression.Tracker
}

// Engine is the per-session facade. One instance per live broadcast.
type Engine struct {
	mu sync.Mutex

	id          string
	broadcaster string
	cfg         Config
	catalog     map[string]domain.Gift
	viewers     map[string]*viewerState
	combo       *combo.Aggregator
	queue       *playback.Scheduler
	battle      *battle.Controller
	log         *eventlog.Log
	sim         *battle.Simulator
	feed        *scorefeed.Client
	audit       *audit.Service
	hooks       Hooks

	comboGen   int
	comboTimer *time.Timer
	battleStop chan struct{}
	feedCancel context.CancelFunc

	startedAt    time.Time
	lastActivity time.Time
	closed       bool
}

// New creates a session engine. sim may be nil to disable the simulated
// opponent; feed may be nil when no remote score feed is configured;
// auditSvc may be nil to disable the audit trail.
func New(id, broadcaster string, cfg Config, sim *battle.Simulator, feed *scorefeed.Client, auditSvc *audit.Service, hooks Hooks) *Engine {
	if cfg.ComboWindow <= 0 {
		cfg.ComboWindow = combo.DefaultWindow
	}
	if cfg.BattleTick <= 0 {
		cfg.BattleTick = time.Second
	}
	if cfg.StartingBalance < 0 {
		cfg.StartingBalance = 0
	}

	e := &Engine{
		id:           id,
		broadcaster:  broadcaster,
		cfg:          cfg,
		catalog:      registerGifts(),
		viewers:      make(map[string]*viewerState),
		combo:        combo.New(cfg.ComboWindow),
		battle:       battle.New(),
		log:          eventlog.New(cfg.LogCap),
		sim:          sim,
		feed:         feed,
		audit:        auditSvc,
		hooks:        hooks,
		startedAt:    time.Now().UTC(),
		lastActivity: time.Now().UTC(),
	}
	e.queue = playback.New(hooks.Play)
	if hooks.LogEntry != nil {
		e.log.Subscribe(hooks.LogEntry)
	}
	return e
}

// ID returns the session id
func (e *Engine) ID() string {
	return e.id
}

// Broadcaster returns the broadcaster's display name
func (e *Engine) Broadcaster() string {
	return e.broadcaster
}

// StartedAt returns the session start time
func (e *Engine) StartedAt() time.Time {
	return e.startedAt
}

// LastActivity returns the time of the last viewer-facing operation
func (e *Engine) LastActivity() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastActivity
}

// Catalog returns the gift catalog
func (e *Engine) Catalog() []domain.Gift {
	gifts := make([]domain.Gift, 0, len(e.catalog))
	for _, g := range e.catalog {
		gifts = append(gifts, g)
	}
	return gifts
}

// Gift looks up a catalog entry
func (e *Engine) Gift(id string) (domain.Gift, bool) {
	g, ok := e.catalog[id]
	return g, ok
}

func (e *Engine) viewer(viewerID, name string) *viewerState {
	v, ok := e.viewers[viewerID]
	if !ok {
		v = &viewerState{
			name:        name,
			wallet:      wallet.New(e.cfg.StartingBalance),
			progression: progression.New(),
		}
		e.viewers[viewerID] = v
	}
	if name != "" {
		v.name = name
	}
	return v
}

// SendGift runs the full gift-send sequence: catalog lookup, wallet
// debit, progression, battle scoring, combo aggregation, playback
// enqueue, and the feed announcement. A failed debit has no side
// effects at all.
func (e *Engine) SendGift(viewerID, viewerName, giftID string, now time.Time) (*SendGiftResult, error) {
	e.mu.Lock()

	if e.closed {
		e.mu.Unlock()
		return nil, ErrClosed
	}

	gift, ok := e.catalog[giftID]
	if !ok {
		e.mu.Unlock()
		return nil, ErrUnknownGift
	}

	v := e.viewer(viewerID, viewerName)
	if err := v.wallet.TryDebit(gift.Cost); err != nil {
		e.mu.Unlock()
		if errors.Is(err, wallet.ErrInsufficientFunds) {
			e.audit.Log(context.Background(), audit.EventInsufficient, domain.SeverityInfo,
				"gift rejected for insufficient funds",
				map[string]interface{}{"gift_id": giftID, "cost": gift.Cost},
				audit.WithViewer(viewerID), audit.WithSession(e.id))
		}
		return nil, err
	}

	e.lastActivity = now

	spend := v.progression.ApplySpend(gift.Cost)
	var notice *domain.LogEntry
	if spend.LeveledUp {
		n := eventlog.SystemNotice(fmt.Sprintf("%s reached level %d", v.name, spend.Level), now)
		notice = &n
	}

	e.battle.AddSelfScore(gift.Cost)

	count := e.combo.RegisterSend(giftID, now)
	e.scheduleComboExpiryLocked()

	token := domain.PlayToken{
		ID:        uuid.New().String(),
		GiftID:    gift.ID,
		Animation: gift.Animation,
	}
	name := v.name
	balance := v.wallet.Balance()

	// The enqueue and the feed appends stay under the mutex so two
	// concurrent sends cannot interleave: feed order and playback order
	// always match debit/combo order. Hooks fire from here and must not
	// call back into the engine.
	if notice != nil {
		*notice = e.log.Append(*notice)
	}
	e.queue.Enqueue(token)
	entry := e.log.Append(eventlog.GiftAnnouncement(name, spend.Level, gift, count, now))

	e.mu.Unlock()

	if notice != nil {
		e.audit.Log(context.Background(), audit.EventLevelUp, domain.SeverityInfo,
			notice.Text,
			map[string]interface{}{"level": spend.Level, "levels_gained": spend.LevelsGained},
			audit.WithViewer(viewerID), audit.WithSession(e.id))
	}
	e.audit.Log(context.Background(), audit.EventGiftSent, domain.SeverityInfo,
		name+" sent "+gift.Name,
		map[string]interface{}{"gift_id": gift.ID, "cost": gift.Cost, "combo_count": count},
		audit.WithViewer(viewerID), audit.WithSession(e.id))

	return &SendGiftResult{
		Gift:       gift,
		Balance:    balance,
		ComboCount: count,
		Level:      spend.Level,
		LeveledUp:  spend.LeveledUp,
		Entry:      entry,
	}, nil
}

// scheduleComboExpiryLocked re-arms the combo expiry timer. The
// generation counter makes a timer armed for an older expiry a no-op.
func (e *Engine) scheduleComboExpiryLocked() {
	e.comboGen++
	gen := e.comboGen
	if e.comboTimer != nil {
		e.comboTimer.Stop()
	}
	// Small slack so the fire lands strictly past expiresAt.
	e.comboTimer = time.AfterFunc(e.cfg.ComboWindow+10*time.Millisecond, func() {
		e.expireCombo(gen)
	})
}

func (e *Engine) expireCombo(gen int) {
	e.mu.Lock()
	if e.closed || gen != e.comboGen {
		e.mu.Unlock()
		return
	}
	expired := e.combo.ExpireIfStale(time.Now())
	e.mu.Unlock()

	if expired && e.hooks.ComboReset != nil {
		e.hooks.ComboReset()
	}
}

// ComboState returns a snapshot of the running combo
func (e *Engine) ComboState() domain.ComboState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.combo.State()
}

// PostChat appends a viewer chat message to the feed
func (e *Engine) PostChat(viewerID, viewerName, text string, now time.Time) (domain.LogEntry, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return domain.LogEntry{}, ErrClosed
	}
	v := e.viewer(viewerID, viewerName)
	level := v.progression.Level()
	name := v.name
	e.lastActivity = now
	e.mu.Unlock()

	return e.log.Append(eventlog.Chat(name, level, text, now)), nil
}

// StartBattle begins a battle and starts its one-second clock
func (e *Engine) StartBattle(durationSeconds int, opponentLabel string, now time.Time) (domain.BattleState, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return domain.BattleState{}, ErrClosed
	}
	if err := e.battle.Start(durationSeconds, opponentLabel); err != nil {
		e.mu.Unlock()
		return domain.BattleState{}, err
	}

	if e.battleStop != nil {
		close(e.battleStop)
	}
	stop := make(chan struct{})
	e.battleStop = stop
	e.lastActivity = now
	state := e.battle.State()

	e.stopFeedLocked()
	var feedCtx context.Context
	if e.feed != nil {
		feedCtx, e.feedCancel = context.WithCancel(context.Background())
	}
	e.mu.Unlock()

	go e.runBattleTicker(stop)
	if feedCtx != nil {
		go e.runScoreFeed(feedCtx)
	}

	e.log.Append(eventlog.SystemNotice("battle against "+opponentLabel+" started", now))
	e.audit.Log(context.Background(), audit.EventBattleStarted, domain.SeverityInfo,
		"battle started against "+opponentLabel,
		map[string]interface{}{"duration_seconds": durationSeconds},
		audit.WithSession(e.id))
	e.emitBattle(state)
	return state, nil
}

func (e *Engine) runBattleTicker(stop chan struct{}) {
	ticker := time.NewTicker(e.cfg.BattleTick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if done := e.tickBattle(stop); done {
				return
			}
		}
	}
}

// runScoreFeed polls the remote opponent feed for the lifetime of one
// battle. The context is cancelled when the battle stops, ends, or the
// session closes; scoring after that is a no-op anyway.
func (e *Engine) runScoreFeed(ctx context.Context) {
	err := e.feed.Run(ctx, e.id, func(ev scorefeed.ScoreEvent) {
		e.ApplyOpponentScore(ev.Amount)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logrus.WithFields(logrus.Fields{
			"session": e.id,
		}).WithError(err).Warn("opponent score feed stopped")
	}
}

func (e *Engine) stopFeedLocked() {
	if e.feedCancel != nil {
		e.feedCancel()
		e.feedCancel = nil
	}
}

// tickBattle applies one clock tick. Returns true when the ticker
// goroutine should exit.
func (e *Engine) tickBattle(stop chan struct{}) bool {
	e.mu.Lock()
	if e.closed || e.battleStop != stop {
		e.mu.Unlock()
		return true
	}

	if e.sim != nil {
		if inc := e.sim.OnTick(); inc > 0 {
			e.battle.AddOpponentScore(inc)
		}
	}

	ended := e.battle.Tick()
	state := e.battle.State()
	if ended {
		e.battleStop = nil
		e.stopFeedLocked()
	}
	e.mu.Unlock()

	e.emitBattle(state)

	if ended {
		now := time.Now().UTC()
		e.log.Append(eventlog.SystemNotice(battleResultText(state), now))
		e.audit.Log(context.Background(), audit.EventBattleEnded, domain.SeverityInfo,
			"battle ended",
			map[string]interface{}{
				"winner":         state.Winner,
				"score_self":     state.ScoreSelf,
				"score_opponent": state.ScoreOpponent,
			},
			audit.WithSession(e.id))
	}
	return ended
}

func battleResultText(state domain.BattleState) string {
	score := fmt.Sprintf("%d to %d", state.ScoreSelf, state.ScoreOpponent)
	switch state.Winner {
	case domain.WinnerSelf:
		return "battle won " + score
	case domain.WinnerOpponent:
		return "battle lost " + score
	default:
		return "battle tied " + score
	}
}

// StopBattle aborts any battle. Idempotent.
func (e *Engine) StopBattle(now time.Time) domain.BattleState {
	e.mu.Lock()
	if e.closed {
		state := e.battle.State()
		e.mu.Unlock()
		return state
	}
	wasActive := e.battle.Active()
	if e.battleStop != nil {
		close(e.battleStop)
		e.battleStop = nil
	}
	e.stopFeedLocked()
	e.battle.Stop()
	state := e.battle.State()
	e.mu.Unlock()

	if wasActive {
		e.log.Append(eventlog.SystemNotice("battle stopped", now))
		e.audit.Log(context.Background(), audit.EventBattleStopped, domain.SeverityInfo,
			"battle stopped", nil, audit.WithSession(e.id))
		e.emitBattle(state)
	}
	return state
}

// ApplyOpponentScore feeds an opponent score event (remote feed or the
// opponent-score endpoint). No-op outside an active battle.
func (e *Engine) ApplyOpponentScore(amount int64) domain.BattleState {
	e.mu.Lock()
	applied := e.battle.AddOpponentScore(amount)
	state := e.battle.State()
	e.mu.Unlock()

	if applied {
		e.emitBattle(state)
	}
	return state
}

// BattleState returns a snapshot of the battle
func (e *Engine) BattleState() domain.BattleState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.battle.State()
}

func (e *Engine) emitBattle(state domain.BattleState) {
	if e.hooks.Battle != nil {
		e.hooks.Battle(state)
	}
}

// OnAnimationCompleted releases the playing slot. Failures are treated
// as completion so one bad animation never stalls the queue.
func (e *Engine) OnAnimationCompleted(failed bool, reason string) {
	if failed {
		logrus.WithFields(logrus.Fields{
			"session": e.id,
			"reason":  reason,
		}).Warn("animation playback failed, skipping")
		e.audit.Log(context.Background(), audit.EventPlaybackFailure, domain.SeverityWarning,
			"animation playback failed",
			map[string]interface{}{"reason": reason},
			audit.WithSession(e.id))
	}
	e.queue.OnCurrentCompleted()
}

// NowPlaying returns the token currently in the playing slot
func (e *Engine) NowPlaying() (domain.PlayToken, bool) {
	return e.queue.NowPlaying()
}

// PendingAnimations returns the queue depth behind the playing slot
func (e *Engine) PendingAnimations() int {
	return e.queue.PendingCount()
}

// CreditCoins tops up a viewer's wallet
func (e *Engine) CreditCoins(viewerID, viewerName string, amount int64) (int64, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return 0, ErrClosed
	}
	v := e.viewer(viewerID, viewerName)
	err := v.wallet.Credit(amount)
	balance := v.wallet.Balance()
	e.mu.Unlock()

	if err != nil {
		return balance, err
	}
	e.audit.Log(context.Background(), audit.EventWalletTopUp, domain.SeverityInfo,
		"wallet topped up",
		map[string]interface{}{"amount": amount},
		audit.WithViewer(viewerID), audit.WithSession(e.id))
	return balance, nil
}

// Balance returns a viewer's balance, creating the viewer if new
func (e *Engine) Balance(viewerID, viewerName string) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return 0, ErrClosed
	}
	return e.viewer(viewerID, viewerName).wallet.Balance(), nil
}

// ViewerInfo returns a viewer's level and xp
func (e *Engine) ViewerInfo(viewerID string) (level int, xp int64, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, found := e.viewers[viewerID]
	if !found {
		return 0, 0, false
	}
	return v.progression.Level(), v.progression.XP(), true
}

// Entries returns the retained event feed, oldest first
func (e *Engine) Entries() []domain.LogEntry {
	return e.log.Entries()
}

// Close shuts the session down, cancelling all timers. Idempotent.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	if e.comboTimer != nil {
		e.comboTimer.Stop()
		e.comboTimer = nil
	}
	if e.battleStop != nil {
		close(e.battleStop)
		e.battleStop = nil
	}
	e.stopFeedLocked()
	e.battle.Stop()
	e.mu.Unlock()
}

