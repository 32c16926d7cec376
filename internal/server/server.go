// Package server is the network shell around game sessions: a WebSocket
// text console served through chi, with connection limits, login rate
// limiting, autosave and Prometheus metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lawnchairsociety/abyssforge/internal/antispam"
	"github.com/lawnchairsociety/abyssforge/internal/command"
	"github.com/lawnchairsociety/abyssforge/internal/config"
	"github.com/lawnchairsociety/abyssforge/internal/database"
	"github.com/lawnchairsociety/abyssforge/internal/dice"
	"github.com/lawnchairsociety/abyssforge/internal/game"
	"github.com/lawnchairsociety/abyssforge/internal/logger"
	"github.com/lawnchairsociety/abyssforge/internal/namefilter"
	"github.com/lawnchairsociety/abyssforge/internal/rules"
)

// clientConn is one logged-in slot. mu serializes everything that touches
// the session: commands, autosave and shutdown.
type clientConn struct {
	client   Client
	session  *game.Session
	recorder *slotRecorder
	mu       sync.Mutex
}

type Server struct {
	cfg              *config.ServerConfig
	db               *database.Database
	rules            map[string]*rules.Ruleset
	defaultRules     *rules.Ruleset
	conns            map[string]*clientConn
	mu               sync.RWMutex
	startTime        time.Time
	connLimiter      *ConnLimiter
	loginRateLimiter *LoginRateLimiter
	nameFilter       *namefilter.NameFilter
	sessionSeq       atomic.Int64
	shutdown         chan struct{}
	shutdownOnce     sync.Once
}

// NewServer creates a server. New saves use defaultRules unless the player
// picks another preset; loaded saves use the ruleset named in the record.
func NewServer(cfg *config.ServerConfig, db *database.Database, defaultRules *rules.Ruleset) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	known := map[string]*rules.Ruleset{
		rules.Classic().Name:   rules.Classic(),
		rules.Ascension().Name: rules.Ascension(),
	}
	known[defaultRules.Name] = defaultRules

	return &Server{
		cfg:              cfg,
		db:               db,
		rules:            known,
		defaultRules:     defaultRules,
		conns:            make(map[string]*clientConn),
		startTime:        time.Now(),
		connLimiter:      NewConnLimiter(cfg.Connections),
		loginRateLimiter: NewLoginRateLimiter(cfg.RateLimit),
		nameFilter:       namefilter.Default(),
		shutdown:         make(chan struct{}),
	}
}

// Router returns the HTTP routes: the WebSocket console, a health check
// and, when enabled, Prometheus metrics.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if s.cfg.Server.MetricsEnabled {
		r.Use(metricsMiddleware)
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Get("/ws", s.handleWebSocketUpgrade)
	r.Get("/healthz", s.handleHealth)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.DB().PingContext(r.Context()); err != nil {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "ok %d online\n", len(s.OnlineSlots()))
}

// Run serves until ctx is cancelled, then shuts down gracefully and saves
// every connected slot.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Server.ListenAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.autosaveLoop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "address", httpServer.Addr, "rules", s.defaultRules.Name, "metrics", s.cfg.Server.MetricsEnabled)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.Shutdown()
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout())
	defer cancel()
	err := httpServer.Shutdown(shutdownCtx)
	s.Shutdown()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// handleWebSocketUpgrade checks limits and origin, then upgrades
func (s *Server) handleWebSocketUpgrade(w http.ResponseWriter, r *http.Request) {
	clientIP := getRealIP(r)

	if ok, reason := s.connLimiter.TryAcquire(clientIP); !ok {
		connectionsRejected.WithLabelValues(reason).Inc()
		logger.Warning("WebSocket connection rejected - limit exceeded",
			"remote_addr", r.RemoteAddr,
			"client_ip", clientIP,
			"reason", reason)
		http.Error(w, "Too many connections. Please try again later.", http.StatusTooManyRequests)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			allowed := s.cfg.WebSocket.IsOriginAllowed(origin, r.Host)
			if !allowed {
				connectionsRejected.WithLabelValues("origin").Inc()
				logger.Warning("WebSocket connection rejected - origin not allowed",
					"origin", origin,
					"host", r.Host,
					"remote_addr", r.RemoteAddr)
			}
			return allowed
		},
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", "error", err)
		s.connLimiter.Release(clientIP)
		return
	}

	go func() {
		defer s.connLimiter.Release(clientIP)
		s.serveClient(NewWebSocketClient(wsConn, clientIP, s.cfg.WebSocket.MaxMessageSize))
	}()
}

// serveClient runs one connection. A panic ends only that connection;
// the session is still settled and saved by handleClient's defers.
func (s *Server) serveClient(client Client) {
	defer client.Close()
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Panic in client session", "remote_addr", client.RemoteAddr(), "panic", rec, "stack", string(debug.Stack()))
		}
	}()
	s.handleClient(client)
}

// getRealIP returns the client IP, preferring proxy headers
func getRealIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// "client, proxy1, proxy2"
		if clientIP, _, _ := strings.Cut(xff, ","); strings.TrimSpace(clientIP) != "" {
			return strings.TrimSpace(clientIP)
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return hostOnly(r.RemoteAddr)
}

// handleClient runs one connection from login to disconnect
func (s *Server) handleClient(client Client) {
	connectionsActive.Inc()
	defer connectionsActive.Dec()
	logger.Info("Client connected", "remote_addr", client.RemoteAddr())

	rec, err := s.handleAuth(client)
	if err != nil {
		logger.Info("Authentication failed", "remote_addr", client.RemoteAddr(), "error", err)
		return
	}

	sess, recorder, err := s.loadSession(rec)
	if err != nil {
		logger.Error("Failed to load save", "slot", rec.Slot, "error", err)
		client.WriteLine("Failed to load your save. Please try again.\n")
		return
	}

	conn := &clientConn{client: client, session: sess, recorder: recorder}
	if !s.claim(rec.Slot, conn) {
		client.WriteLine("That save is already in play.\n")
		loginsTotal.WithLabelValues("duplicate").Inc()
		return
	}
	sessionsActive.Inc()
	log := logger.With("slot", rec.Slot, "remote_addr", client.RemoteAddr())
	throttle := antispam.NewTracker(s.throttleConfig())

	defer func() {
		s.disconnect(conn)
		sessionsActive.Dec()
		log.Info("Client disconnected")
	}()

	client.WriteLine(command.ParseCommand("status").Execute(sess, s) + "\n")
	client.WriteLine("Type 'help' for a list of commands.\n")

	for {
		line, err := client.ReadLine()
		if err != nil {
			return
		}
		cmd := command.ParseCommand(line)
		if cmd.Name == "" {
			continue
		}
		if verdict := throttle.Check(); !verdict.Allowed {
			commandsThrottled.Inc()
			client.WriteLine(fmt.Sprintf("%s (wait %d seconds)\n", verdict.Reason, verdict.WaitSeconds))
			continue
		}
		observeCommand(cmd.Name)

		conn.mu.Lock()
		out := cmd.Execute(sess, s)
		conn.mu.Unlock()

		if out != "" {
			if err := client.WriteLine(out + "\n"); err != nil {
				return
			}
		}
		if cmd.IsQuit() {
			return
		}
	}
}

// SetNameFilter replaces the filter new slot names are checked against
func (s *Server) SetNameFilter(nf *namefilter.NameFilter) {
	s.nameFilter = nf
}

func (s *Server) throttleConfig() antispam.Config {
	c := s.cfg.Commands
	return antispam.ConfigFromYAML(c.ThrottleEnabled, c.MaxPerWindow, c.WindowSeconds)
}

// claim registers conn under slot unless the slot is already online
func (s *Server) claim(slot string, conn *clientConn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.conns[slot]; taken {
		return false
	}
	s.conns[slot] = conn
	return true
}

// disconnect settles any open expedition, saves and releases the slot
func (s *Server) disconnect(conn *clientConn) {
	conn.mu.Lock()
	settleExpedition(conn.session)
	if err := s.saveSession(conn.session, conn.recorder); err != nil {
		logger.Error("Failed to save on disconnect", "slot", conn.session.Slot(), "error", err)
	}
	conn.mu.Unlock()

	s.mu.Lock()
	if s.conns[conn.session.Slot()] == conn {
		delete(s.conns, conn.session.Slot())
	}
	s.mu.Unlock()
}

func (s *Server) isOnline(slot string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.conns[slot]
	return ok
}

// newSource gives each session its own RNG. A configured seed makes the
// n-th session of a run replayable.
func (s *Server) newSource() dice.Source {
	n := s.sessionSeq.Add(1)
	if s.cfg.Game.Seed != 0 {
		return dice.New(s.cfg.Game.Seed + n)
	}
	return dice.NewRandom()
}

func (s *Server) ruleNames() []string {
	names := make([]string, 0, len(s.rules))
	for name := range s.rules {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// connections snapshots the logged-in slots
func (s *Server) connections() []*clientConn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conns := make([]*clientConn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	return conns
}

func (s *Server) autosaveLoop() {
	interval := s.cfg.Game.AutosaveInterval()
	if interval <= 0 {
		logger.Info("Autosave disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	logger.Info("Autosave enabled", "interval", interval.String())

	for {
		select {
		case <-s.shutdown:
			return
		case <-ticker.C:
			s.saveAll()
		}
	}
}

// saveAll saves every logged-in slot. Open expeditions stay open; only
// their finished history and the player record are written.
func (s *Server) saveAll() {
	saved := 0
	for _, c := range s.connections() {
		c.mu.Lock()
		err := s.saveSession(c.session, c.recorder)
		c.mu.Unlock()
		if err != nil {
			logger.Error("Autosave failed", "slot", c.session.Slot(), "error", err)
			continue
		}
		saved++
	}
	if saved > 0 {
		logger.Debug("Autosave complete", "saved", saved)
	}
}

// Shutdown stops background work, settles and saves every connected slot
// and closes the connections. Safe to call more than once.
func (s *Server) Shutdown() {
	s.shutdownOnce.Do(func() {
		close(s.shutdown)
		s.loginRateLimiter.Stop()

		for _, c := range s.connections() {
			c.mu.Lock()
			settleExpedition(c.session)
			if err := s.saveSession(c.session, c.recorder); err != nil {
				logger.Error("Failed to save on shutdown", "slot", c.session.Slot(), "error", err)
			} else {
				logger.Info("Saved on shutdown", "slot", c.session.Slot())
			}
			c.mu.Unlock()
			c.client.WriteLine("The server is shutting down. Your progress has been saved.\n")
			c.client.Close()
		}
		logger.Info("Server shutdown complete, all slots saved")
	})
}

// Broadcast sends message to every logged-in slot
func (s *Server) Broadcast(message string) {
	for _, c := range s.connections() {
		c.client.WriteLine(message + "\n")
	}
}

// SaveSession saves a session from inside a command. The caller already
// holds the connection's lock.
func (s *Server) SaveSession(sess *game.Session) error {
	s.mu.RLock()
	conn := s.conns[sess.Slot()]
	s.mu.RUnlock()

	var rec *slotRecorder
	if conn != nil && conn.session == sess {
		rec = conn.recorder
	}
	return s.saveSession(sess, rec)
}

func (s *Server) GrantsEnabled() bool {
	return s.cfg.Game.GrantsEnabled
}

// OnlineSlots lists logged-in slots in name order
func (s *Server) OnlineSlots() []string {
	s.mu.RLock()
	slots := make([]string, 0, len(s.conns))
	for slot := range s.conns {
		slots = append(slots, slot)
	}
	s.mu.RUnlock()
	slices.Sort(slots)
	return slots
}

func (s *Server) Uptime() time.Duration {
	return time.Since(s.startTime)
}

func (s *Server) RecentExpeditions(slot string, limit int) ([]database.ExpeditionRecord, error) {
	return s.db.RecentExpeditions(slot, limit)
}

func (s *Server) BossLeaderboard(limit int) ([]database.KillCount, error) {
	return s.db.BossKillLeaderboard(limit)
}

var _ command.Host = (*Server)(nil)
