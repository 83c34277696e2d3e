package web

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/jaminalder/gomoku/internal/app"
	"github.com/jaminalder/gomoku/internal/domain"
)

type templates struct {
	game  *template.Template
	board *template.Template
	index *template.Template
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"cellSymbol": func(m domain.Mark) string { return m.String() },
		"statusText": statusText,
		"moveText":   moveText,
	}
}

func statusText(gs app.GameState) string {
	switch gs.Status.State {
	case domain.Won:
		return "Winner: " + gs.Status.Winner.String()
	case domain.Draw:
		return "Draw"
	default:
		return "Next player: " + gs.Next.String()
	}
}

func moveText(m domain.Move) string {
	if m.Coord == nil {
		return "Go to game start"
	}
	return fmt.Sprintf("Go to move #%d: %v", m.Step, *m.Coord)
}

func loadTemplates() *templates {
	base := template.Must(template.New("base").Funcs(funcs()).Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Gomoku</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
<style>
.board-row{display:flex}
.square,.square-winner{width:28px;height:28px;padding:0;font-weight:bold}
.square-winner{background:#ffd24d}
.current-selected{font-weight:bold}
</style>
</head><body>{{template "content" .}}</body></html>`))
	index := template.Must(base.Clone())
	template.Must(index.New("content").Parse(`<h1>Gomoku</h1><form action="/game" method="post"><button>New game</button></form>`))
	game := template.Must(base.Clone())
	template.Must(game.New("content").Parse(`
<div hx-ext="sse" sse-connect="/game/{{.ID}}/events">
{{.BoardHTML}}
</div>`))
	// Standalone board template used for fragment rendering
	board := template.Must(template.New("board_only").Funcs(funcs()).Parse(boardTemplate))
	return &templates{game: game, board: board, index: index}
}

func renderTemplate(t *template.Template, name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if name == "" {
		err = t.Execute(&buf, data)
	} else {
		err = t.ExecuteTemplate(&buf, name, data)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.Bytes(), nil
}

const boardTemplate = `
<div id="board" class="game" hx-get="/game/{{.ID}}/board?order={{.Order}}" hx-trigger="sse:board" hx-swap="outerHTML">
  {{if .Error}}
  <div class="alert">{{.Error}}</div>
  {{end}}
  <div class="game-board">
  {{range $r, $row := .Game.Board}}
  <div class="board-row">
    {{range $c, $m := $row}}
      <form hx-post="/game/{{$.ID}}/play" hx-target="#board" hx-swap="outerHTML" method="post" style="display:inline">
        <input type="hidden" name="r" value="{{$r}}">
        <input type="hidden" name="c" value="{{$c}}">
        <input type="hidden" name="order" value="{{$.Order}}">
        <button type="submit" class="{{if $.Game.Winning $r $c}}square-winner{{else}}square{{end}}">{{cellSymbol $m}}</button>
      </form>
    {{end}}
  </div>
  {{end}}
  </div>
  <div class="game-info">
    <div id="status">{{statusText .Game}}</div>
    <button hx-get="/game/{{.ID}}/board?order={{.Toggle}}" hx-target="#board" hx-swap="outerHTML">{{if eq .Order "desc"}}Descending{{else}}Ascending{{end}}</button>
    <ol>
    {{range .Moves}}
      <li>
        <form hx-post="/game/{{$.ID}}/jump" hx-target="#board" hx-swap="outerHTML" method="post">
          <input type="hidden" name="step" value="{{.Step}}">
          <input type="hidden" name="order" value="{{$.Order}}">
          <button type="submit"{{if eq .Step $.Game.Step}} class="current-selected"{{end}}>{{moveText .}}</button>
        </form>
      </li>
    {{end}}
    </ol>
  </div>
</div>
`

// boardData is what the board fragment renders.
type boardData struct {
	ID     string
	Game   app.GameState
	Moves  []domain.Move
	Order  string
	Toggle string
	Error  string
}

func newBoardData(gs app.GameState, order domain.Order, errMsg string) boardData {
	d := boardData{ID: gs.ID, Game: gs, Moves: domain.Ordered(gs.Moves, order), Error: errMsg, Order: "asc", Toggle: "desc"}
	if order == domain.Descending {
		d.Order, d.Toggle = "desc", "asc"
	}
	return d
}

// parseOrder maps "asc"/"desc" to an Order, falling back to def.
func parseOrder(s string, def domain.Order) domain.Order {
	switch s {
	case "asc":
		return domain.Ascending
	case "desc":
		return domain.Descending
	default:
		return def
	}
}
