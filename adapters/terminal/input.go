package terminal

import (
	"bufio"
	"context"
	"io"
	"strings"
	"time"

	"banditlab/domain/core"
	"banditlab/ports"
)

// LineInput implements InputSourcePort over a line-oriented stream,
// normally stdin. A single pump goroutine owns the underlying reader;
// response deadlines are enforced here, not by the caller blocking on a
// read it cannot cancel.
type LineInput struct {
	lines chan string
}

// NewLineInput starts reading lines from r.
func NewLineInput(r io.Reader) *LineInput {
	i := &LineInput{lines: make(chan string, 8)}
	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			i.lines <- scanner.Text()
		}
		close(i.lines)
	}()
	return i
}

// AwaitChoice blocks until a left/right response arrives or the timeout
// passes. Input buffered before stimulus onset is discarded first, so a
// press from the previous trial cannot answer this one. Unrecognized
// input is ignored and the deadline keeps running.
func (i *LineInput) AwaitChoice(ctx context.Context, timeout time.Duration) (ports.Side, core.ReactionTime, error) {
	if err := i.drain(); err != nil {
		return ports.SideLeft, 0, err
	}

	start := time.Now()
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case line, ok := <-i.lines:
			if !ok {
				return ports.SideLeft, 0, core.ErrSessionAborted
			}
			side, recognized := parseSide(line)
			if !recognized {
				continue
			}
			return side, core.NewReactionTime(time.Since(start)), nil
		case <-timer.C:
			return ports.SideLeft, 0, core.ErrNoResponse
		case <-ctx.Done():
			return ports.SideLeft, 0, ctx.Err()
		}
	}
}

// AwaitContinue blocks until the participant sends any line.
func (i *LineInput) AwaitContinue(ctx context.Context) error {
	if err := i.drain(); err != nil {
		return err
	}
	select {
	case _, ok := <-i.lines:
		if !ok {
			return core.ErrSessionAborted
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AwaitLine blocks until the next line arrives, for prompts that happen
// outside the trial loop.
func (i *LineInput) AwaitLine(ctx context.Context) (string, error) {
	select {
	case line, ok := <-i.lines:
		if !ok {
			return "", core.ErrSessionAborted
		}
		return line, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// drain discards buffered input. A closed stream surfaces as an aborted
// session.
func (i *LineInput) drain() error {
	for {
		select {
		case _, ok := <-i.lines:
			if !ok {
				return core.ErrSessionAborted
			}
		default:
			return nil
		}
	}
}

func parseSide(line string) (ports.Side, bool) {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "l", "left":
		return ports.SideLeft, true
	case "r", "right":
		return ports.SideRight, true
	default:
		return ports.SideLeft, false
	}
}
