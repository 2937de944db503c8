// Package robot drives the hull painting robot: an IntCode program that
// reads the color under the robot and answers with a color to paint and a
// direction to turn.
package robot

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/akhildatla/intcode/pkg/intcode"
)

// Panel colors.
const (
	Black int64 = 0
	White int64 = 1
)

// Turn directions.
const (
	TurnLeft  int64 = 0
	TurnRight int64 = 1
)

var (
	ErrInvalidColor = errors.New("invalid paint color")
	ErrInvalidTurn  = errors.New("invalid turn direction")
)

// Point is a panel coordinate. Y grows upward.
type Point struct {
	X, Y int
}

// Robot tracks position, heading and every panel painted so far.
type Robot struct {
	pos     Point
	dx, dy  int
	painted map[Point]int64
	log     *zap.Logger
}

// Option configures a Robot.
type Option func(*Robot)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Robot) {
		r.log = l
	}
}

// New returns a robot at the origin facing up on an all-black hull.
func New(opts ...Option) *Robot {
	r := &Robot{
		dy:      1,
		painted: make(map[Point]int64),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Position returns the current position.
func (r *Robot) Position() Point { return r.pos }

// ColorAt returns the color of the panel at p.
func (r *Robot) ColorAt(p Point) int64 {
	return r.painted[p]
}

// ColorHere returns the color of the panel under the robot.
func (r *Robot) ColorHere() int64 {
	return r.painted[r.pos]
}

// PaintHere paints the panel under the robot.
func (r *Robot) PaintHere(color int64) error {
	if color != Black && color != White {
		return fmt.Errorf("%w: %d", ErrInvalidColor, color)
	}
	r.painted[r.pos] = color
	return nil
}

// TurnAndMove turns left or right and moves one panel forward.
func (r *Robot) TurnAndMove(turn int64) error {
	switch turn {
	case TurnLeft:
		r.dx, r.dy = -r.dy, r.dx
	case TurnRight:
		r.dx, r.dy = r.dy, -r.dx
	default:
		return fmt.Errorf("%w: %d", ErrInvalidTurn, turn)
	}
	r.pos.X += r.dx
	r.pos.Y += r.dy
	return nil
}

// Panels returns the number of panels painted at least once.
func (r *Robot) Panels() int {
	return len(r.painted)
}

// Paint runs m to completion, answering every input request with the color
// under the robot. Outputs alternate between a color to paint and a turn.
func (r *Robot) Paint(m *intcode.Machine) error {
	paint := true
	for {
		pause, err := m.Resume()
		if err != nil {
			return err
		}

		switch pause.Status {
		case intcode.StatusDone:
			r.log.Debug("painting finished", zap.Int("panels", r.Panels()))
			return nil

		case intcode.StatusNeedInput:
			m.AddInput(r.ColorHere())

		case intcode.StatusOutput:
			if paint {
				err = r.PaintHere(pause.Value)
			} else {
				err = r.TurnAndMove(pause.Value)
			}
			if err != nil {
				return err
			}
			paint = !paint
		}
	}
}

// Render draws the painted area with # for white and a space for black,
// top row first.
func (r *Robot) Render() string {
	if len(r.painted) == 0 {
		return ""
	}

	var lo, hi Point
	first := true
	for p := range r.painted {
		if first {
			lo, hi = p, p
			first = false
			continue
		}
		lo.X, lo.Y = min(lo.X, p.X), min(lo.Y, p.Y)
		hi.X, hi.Y = max(hi.X, p.X), max(hi.Y, p.Y)
	}

	var sb strings.Builder
	for y := hi.Y; y >= lo.Y; y-- {
		for x := lo.X; x <= hi.X; x++ {
			if r.painted[Point{x, y}] == White {
				sb.WriteByte('#')
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
