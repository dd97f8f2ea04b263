package art

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nikolat/nostr-unyu/nostr"
)

const (
	glyphNull  = "kubipaca_null"
	glyphFence = "seigen_seigen"
)

// An occupied cell was left without a glyph, which a completed walk never produces.
var ErrIncompleteCell = errors.New("occupied cell without a glyph")

// Rendered drawing: one line per grid row, glyphs as `:shortcode:` custom emoji, plus the emoji
// tags that resolve them.
type Art struct {
	Content string
	Emoji   nostr.Tags
}

type emojiSet struct {
	names []string
	seen  map[string]bool
}

func (s *emojiSet) add(name string) {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if !s.seen[name] {
		s.seen[name] = true
		s.names = append(s.names, name)
	}
}

func kubipacaURL(name string) string {
	dir := "kubipaca"
	if strings.HasSuffix(name, "_gaming") {
		dir = "kubipaca_gaming"
	}
	return fmt.Sprintf("https://lokuyow.github.io/images/nostr/emoji/%s/%s.webp", dir, name)
}

func seigenURL(name string) string {
	return fmt.Sprintf("https://raw.githubusercontent.com/uchijo/my-emoji/main/seigen_set/%s.png", name)
}

func monoURL(name string) string {
	return fmt.Sprintf("https://raw.githubusercontent.com/TsukemonoGit/TsukemonoGit.github.io/main/img/emoji/%s.webp", name)
}

var headGlyphs = map[Direction][2]string{
	// entry side: {alpaca face, mono face}
	Down:  {"kubipaca_kao", "monopaka"},
	Left:  {"kubipaca_kao_migi", "monopaka_r"},
	Right: {"kubipaca_kao_hidari", "monopaka_l"},
	Up:    {"kubipaca_kao_sakasa", "monopaka_gyaku"},
}

// Returns the shortcode for a cell and whether it is a mono face. Ears render as nothing.
func (c *cell) glyph(mono bool) (string, bool) {
	var name string
	switch c.kind {
	case kindEar:
		return "", false
	case kindBody:
		name = "kubipaca_karada"
	case kindJuji:
		name = "kubipaca_kubi_juji"
	default:
		switch {
		case c.head:
			faces := headGlyphs[c.sides[0]]
			if mono {
				return faces[1], true
			}
			name = faces[0]
		case len(c.sides) == 3:
			switch {
			case !c.has(Left):
				name = "kubipaca_kubi_hidariT"
			case !c.has(Up):
				name = "kubipaca_kubi_T"
			case !c.has(Right):
				name = "kubipaca_kubi_migiT"
			default:
				name = "kubipaca_kubi_gyakuT"
			}
		case c.has(Left) && c.has(Right):
			name = "kubipaca_kubi_yoko"
		case c.has(Up) && c.has(Down):
			name = "kubipaca_kubi"
		case c.has(Up) && c.has(Right):
			name = "kubipaca_kubi_uemigi"
		case c.has(Up) && c.has(Left):
			name = "kubipaca_kubi_uehidari"
		case c.has(Right) && c.has(Down):
			name = "kubipaca_kubi_migisita"
		default:
			name = "kubipaca_kubi_hidarisita"
		}
	}
	if c.gaming {
		name += "_gaming"
	}
	return name, false
}

// Renders the grid top row first. When the drawing touches the width limit every row is padded to
// the full width and framed left and right with a fence; when it touches the height limit fence
// rows are added above and below.
func (g *Grid) Render(mono bool) (Art, error) {
	var kubipaca, seigen, monos emojiSet
	if len(g.order) == 0 {
		return Art{}, nil
	}

	limitWidth := g.maxX-g.minX == g.Width-1
	limitHeight := g.maxY-g.minY == g.Height-1

	rowMax := make(map[int]int)
	for _, p := range g.order {
		if m, ok := rowMax[p.Y]; !ok || p.X > m {
			rowMax[p.Y] = p.X
		}
	}

	var lines []string
	for y := g.maxY; y >= g.minY; y-- {
		var sb strings.Builder
		xMax, ok := rowMax[y]
		if limitWidth {
			xMax = g.maxX
		} else if !ok {
			xMax = g.minX - 1
		}
		for x := g.minX; x <= xMax; x++ {
			c, occupied := g.cells[point{x, y}]
			if !occupied {
				kubipaca.add(glyphNull)
				sb.WriteString(":" + glyphNull + ":")
				continue
			}
			if c == nil {
				return Art{}, fmt.Errorf("%w at (%d, %d)", ErrIncompleteCell, x, y)
			}
			name, isMono := c.glyph(mono)
			if name == "" {
				continue
			}
			if isMono {
				monos.add(name)
			} else {
				kubipaca.add(name)
			}
			sb.WriteString(":" + name + ":")
		}
		line := sb.String()
		if limitWidth {
			line = ":" + glyphFence + ":" + line + ":" + glyphFence + ":"
			seigen.add(glyphFence)
		}
		lines = append(lines, line)
	}
	if limitHeight {
		rep := g.maxX - g.minX + 1
		if limitWidth {
			rep += 2
		}
		fence := strings.Repeat(":"+glyphFence+":", rep)
		lines = append(append([]string{fence}, lines...), fence)
		seigen.add(glyphFence)
	}

	var tags nostr.Tags
	for _, n := range kubipaca.names {
		tags = append(tags, nostr.Tag{"emoji", n, kubipacaURL(n)})
	}
	for _, n := range seigen.names {
		tags = append(tags, nostr.Tag{"emoji", n, seigenURL(n)})
	}
	for _, n := range monos.names {
		tags = append(tags, nostr.Tag{"emoji", n, monoURL(n)})
	}
	return Art{
		Content: strings.Join(lines, "\n"),
		Emoji:   tags,
	}, nil
}

// Walks and renders in one go.
func Generate(opts Options, rnd Rand) (Art, error) {
	return Walk(opts, rnd).Render(opts.Mono)
}
