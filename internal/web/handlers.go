package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jaminalder/gomoku/internal/app"
	"github.com/jaminalder/gomoku/internal/domain"
)

type handlers struct {
	svc       *app.Service
	tpl       *templates
	log       *slog.Logger
	order     domain.Order
	heartbeat time.Duration
}

func (h *handlers) renderBoard(gs app.GameState, order domain.Order, errMsg string) ([]byte, error) {
	return renderTemplate(h.tpl.board, "", newBoardData(gs, order, errMsg))
}

func (h *handlers) orderOf(r *http.Request) domain.Order {
	return parseOrder(r.FormValue("order"), h.order)
}

// writeHTML sends b, or a 500 when rendering it failed.
func (h *handlers) writeHTML(w http.ResponseWriter, r *http.Request, b []byte, err error) {
	if err != nil {
		h.log.Error("render", "path", r.URL.Path, "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(b)
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	b, err := renderTemplate(h.tpl.index, "", nil)
	h.writeHTML(w, r, b, err)
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	gs, err := h.svc.CreateGame()
	if err != nil {
		http.Error(w, "failed to create", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/game/"+gs.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
	gs, ok := h.svc.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	board, err := h.renderBoard(*gs, h.orderOf(r), "")
	if err != nil {
		h.writeHTML(w, r, nil, err)
		return
	}
	data := struct {
		ID        string
		BoardHTML template.HTML
	}{ID: gs.ID, BoardHTML: template.HTML(board)}
	b, err := renderTemplate(h.tpl.game, "", data)
	h.writeHTML(w, r, b, err)
}

func (h *handlers) board(w http.ResponseWriter, r *http.Request) {
	gs, ok := h.svc.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	b, err := h.renderBoard(*gs, h.orderOf(r), "")
	h.writeHTML(w, r, b, err)
}

// errorMessage maps rejections to the text shown above the board.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrOccupied):
		return "Cell is occupied"
	case errors.Is(err, domain.ErrOutOfBounds):
		return "Out of bounds"
	case errors.Is(err, domain.ErrGameOver):
		return "Game is over"
	case errors.Is(err, domain.ErrStepOutOfRange):
		return "No such move"
	default:
		return "Invalid move"
	}
}

// respond renders the board fragment after a mutation. Rejections keep the
// previous state and show the reason.
func (h *handlers) respond(w http.ResponseWriter, r *http.Request, id string, gs *app.GameState, err error) {
	var errMsg string
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		errMsg = errorMessage(err)
		if g, ok := h.svc.Get(id); ok {
			gs = g
		}
	}
	if gs == nil {
		http.NotFound(w, r)
		return
	}
	b, rerr := h.renderBoard(*gs, h.orderOf(r), errMsg)
	h.writeHTML(w, r, b, rerr)
}

func (h *handlers) play(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	_ = r.ParseForm()
	ri, errR := strconv.Atoi(r.Form.Get("r"))
	ci, errC := strconv.Atoi(r.Form.Get("c"))
	if errR != nil || errC != nil {
		h.respond(w, r, id, nil, fmt.Errorf("parse move: %w", domain.ErrOutOfBounds))
		return
	}
	gs, err := h.svc.Play(id, ri, ci)
	h.respond(w, r, id, gs, err)
}

func (h *handlers) jump(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	_ = r.ParseForm()
	step, err := strconv.Atoi(r.Form.Get("step"))
	if err != nil {
		h.respond(w, r, id, nil, fmt.Errorf("parse step: %w", domain.ErrStepOutOfRange))
		return
	}
	gs, err := h.svc.Jump(id, step)
	h.respond(w, r, id, gs, err)
}

func (h *handlers) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(chi.URLParam(r, "id")); err != nil {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type stateJSON struct {
	ID     string      `json:"id"`
	Step   int         `json:"step"`
	Next   string      `json:"next"`
	State  string      `json:"state"`
	Winner string      `json:"winner,omitempty"`
	Line   []coordJSON `json:"line,omitempty"`
	Board  []string    `json:"board"`
	Moves  []moveJSON  `json:"moves"`
	Last   *coordJSON  `json:"last,omitempty"`
}

type coordJSON struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type moveJSON struct {
	Step  int        `json:"step"`
	Mark  string     `json:"mark,omitempty"`
	Coord *coordJSON `json:"coord,omitempty"`
}

func toCoordJSON(c *domain.Coord) *coordJSON {
	if c == nil {
		return nil
	}
	return &coordJSON{Row: c.Row, Col: c.Col}
}

func newStateJSON(gs app.GameState, order domain.Order) stateJSON {
	out := stateJSON{
		ID:    gs.ID,
		Step:  gs.Step,
		Next:  gs.Next.String(),
		State: gs.Status.State.String(),
		Last:  toCoordJSON(gs.Last),
	}
	if gs.Status.State == domain.Won {
		out.Winner = gs.Status.Winner.String()
		for _, p := range gs.Status.Line {
			out.Line = append(out.Line, coordJSON{Row: p.Row, Col: p.Col})
		}
	}
	// one string per row, '.' for empty cells
	for _, row := range gs.Board {
		b := make([]byte, len(row))
		for i, m := range row {
			b[i] = '.'
			if m != domain.Empty {
				b[i] = m.String()[0]
			}
		}
		out.Board = append(out.Board, string(b))
	}
	for _, m := range domain.Ordered(gs.Moves, order) {
		out.Moves = append(out.Moves, moveJSON{Step: m.Step, Mark: m.Mark.String(), Coord: toCoordJSON(m.Coord)})
	}
	return out
}

func (h *handlers) state(w http.ResponseWriter, r *http.Request) {
	gs, ok := h.svc.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(newStateJSON(*gs, h.orderOf(r))); err != nil {
		h.log.Error("encode state", "game", gs.ID, "error", err)
	}
}

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.svc.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	// In tests or non-EventSource requests, just acknowledge headers and return
	if r.Header.Get("Accept") != "text/event-stream" {
		w.WriteHeader(http.StatusOK)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}
	ctx := r.Context()
	ch, unsub, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		return
	}
	defer unsub()
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	flusher.Flush()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = io.WriteString(w, ": ping\n\n")
			flusher.Flush()
		case b, ok := <-ch:
			if !ok {
				return
			}
			_, _ = fmt.Fprintf(w, "event: board\n")
			_, _ = fmt.Fprintf(w, "data: %s\n\n", sseData(b))
			flusher.Flush()
		}
	}
}

// sseData prefixes every continuation line of a multi-line payload.
func sseData(b []byte) []byte {
	return bytes.ReplaceAll(bytes.TrimRight(b, "\n"), []byte("\n"), []byte("\ndata: "))
}
