package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jaminalder/gomoku/internal/domain"
)

// Errors exposed by the service layer.
var ErrNotFound = errors.New("game not found")

// GameState is a read-only view of a session, safe to hand to renderers.
type GameState struct {
	ID      string
	Board   [][]domain.Mark
	Status  domain.Status
	Step    int
	Next    domain.Mark
	Last    *domain.Coord
	Moves   []domain.Move
	Created time.Time
	Updated time.Time
}

// Winning reports whether (r, c) is part of the winning line.
func (gs GameState) Winning(r, c int) bool {
	for _, p := range gs.Status.Line {
		if p.Row == r && p.Col == c {
			return true
		}
	}
	return false
}

type session struct {
	id      string
	history *domain.History
	created time.Time
	updated time.Time
}

func (s *session) view() GameState {
	cur := s.history.Current()
	return GameState{
		ID:      s.id,
		Board:   cur.Board.Rows(),
		Status:  s.history.Status(),
		Step:    s.history.Step(),
		Next:    s.history.Next(),
		Last:    cur.LastMove,
		Moves:   s.history.Moves(domain.Ascending),
		Created: s.created,
		Updated: s.updated,
	}
}

type subscriber struct {
	ch        chan []byte
	closeOnce sync.Once
}

func (s *subscriber) close() { s.closeOnce.Do(func() { close(s.ch) }) }

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRenderer sets the broadcast renderer.
func WithRenderer(renderer func(GameState) []byte) Option {
	return func(s *Service) { s.SetRenderer(renderer) }
}

// WithSubscriberBuffer sets the per-subscriber channel capacity.
func WithSubscriberBuffer(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.buffer = n
		}
	}
}

// Service owns game sessions and their subscribers.
type Service struct {
	mu     sync.Mutex
	games  map[string]*session
	subs   map[string]map[*subscriber]struct{}
	render func(GameState) []byte
	log    *slog.Logger
	buffer int
}

// NewService creates a service. Without WithRenderer broadcasts carry no payload.
func NewService(opts ...Option) *Service {
	s := &Service{
		games:  make(map[string]*session),
		subs:   make(map[string]map[*subscriber]struct{}),
		render: func(GameState) []byte { return nil },
		log:    slog.Default(),
		buffer: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(GameState) []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if renderer == nil {
		s.render = func(GameState) []byte { return nil }
		return
	}
	s.render = renderer
}

// CreateGame starts a new session on the standard board.
func (s *Service) CreateGame() (*GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	sess := &session{id: uuid.NewString(), history: domain.NewGame(), created: now, updated: now}
	s.games[sess.id] = sess
	s.log.Info("game created", "game", sess.id)
	gs := sess.view()
	return &gs, nil
}

// Get returns a view of the session if present.
func (s *Service) Get(id string) (*GameState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.games[id]
	if !ok {
		return nil, false
	}
	gs := sess.view()
	return &gs, true
}

// Play applies a move for whoever is to move and broadcasts the new state.
// Rejected moves return the domain error and leave the session untouched.
func (s *Service) Play(id string, r, c int) (*GameState, error) {
	return s.mutate(id, func(sess *session) error {
		mark := sess.history.Next()
		if err := sess.history.Play(r, c); err != nil {
			s.log.Debug("move rejected", "game", id, "row", r, "col", c, "error", err)
			return err
		}
		st := sess.history.Status()
		s.log.Debug("move played", "game", id, "mark", mark.String(), "row", r, "col", c, "step", sess.history.Step())
		switch st.State {
		case domain.Won:
			s.log.Info("game won", "game", id, "winner", st.Winner.String(), "step", sess.history.Step())
		case domain.Draw:
			s.log.Info("game drawn", "game", id)
		}
		return nil
	})
}

// Jump moves the session cursor to step and broadcasts the new state.
func (s *Service) Jump(id string, step int) (*GameState, error) {
	return s.mutate(id, func(sess *session) error {
		if err := sess.history.JumpTo(step); err != nil {
			s.log.Debug("jump rejected", "game", id, "step", step, "error", err)
			return err
		}
		s.log.Debug("jumped", "game", id, "step", step)
		return nil
	})
}

// Delete discards a session and closes its subscribers.
func (s *Service) Delete(id string) error {
	s.mu.Lock()
	if _, ok := s.games[id]; !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	delete(s.games, id)
	for sub := range s.subs[id] {
		sub.close()
	}
	delete(s.subs, id)
	s.mu.Unlock()
	s.log.Info("game deleted", "game", id)
	return nil
}

func (s *Service) mutate(id string, apply func(*session) error) (*GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := apply(sess); err != nil {
		return nil, err
	}
	sess.updated = time.Now()
	gs := sess.view()
	s.broadcastLocked(id, s.render(gs))
	return &gs, nil
}

// broadcastLocked fans payload out without blocking. Subscribers whose buffer
// is full are closed and dropped. Sends and closes both happen under s.mu.
func (s *Service) broadcastLocked(id string, payload []byte) {
	dropped := 0
	for sub := range s.subs[id] {
		select {
		case sub.ch <- payload:
		default:
			sub.close()
			delete(s.subs[id], sub)
			dropped++
		}
	}
	if dropped > 0 {
		s.log.Warn("dropped slow subscribers", "game", id, "count", dropped)
	}
}

// Subscribe registers a subscriber for a game. The channel is closed when ctx
// ends, the returned func is called, the subscriber falls behind, or the game
// is deleted.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		return nil, nil, ErrNotFound
	}
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan []byte, s.buffer)}
	set[sub] = struct{}{}

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
			}
			sub.close()
		})
	}
	go func() {
		<-ctx.Done()
		unsub()
	}()
	return sub.ch, unsub, nil
}
