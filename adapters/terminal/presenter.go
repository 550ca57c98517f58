package terminal

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"banditlab/domain/core"
	"banditlab/domain/trial"
	"banditlab/ports"
)

// armSymbols are the two abstract option markers. The symbol follows the
// arm when sides are swapped, exactly like the image stimuli in the lab
// setup.
var armSymbols = [2]string{"◆", "●"}

// Presenter implements StimulusPresenterPort as plain text screens.
type Presenter struct {
	out io.Writer
}

// NewPresenter creates a presenter writing to out.
func NewPresenter(out io.Writer) *Presenter {
	return &Presenter{out: out}
}

// ShowInstruction renders one instruction page. Advancing is the input
// source's job.
func (p *Presenter) ShowInstruction(ctx context.Context, body, footer string) error {
	_, err := fmt.Fprintf(p.out, "%s\n%s\n\n[%s]\n", divider(), body, footer)
	return err
}

// ShowChoice renders the two options at their sides for this trial.
func (p *Presenter) ShowChoice(ctx context.Context, layout ports.Layout) error {
	left := armSymbols[layout.ArmOnSide(ports.SideLeft)]
	right := armSymbols[layout.ArmOnSide(ports.SideRight)]
	_, err := fmt.Fprintf(p.out, "%s\n    %s          %s\n   (l)          (r)\n", divider(), left, right)
	return err
}

// ShowFeedback renders the outcome under the chosen option and holds it
// for the feedback duration. Salient outcomes get a marked frame; the
// audio channel supplies the rest of the salience.
func (p *Presenter) ShowFeedback(ctx context.Context, layout ports.Layout, chosen ports.Side, fb ports.Feedback, d time.Duration) error {
	symbol := armSymbols[layout.ArmOnSide(chosen)]
	text := fb.Text
	if fb.Condition == trial.ConditionSalient {
		text = fmt.Sprintf("*** %s ***", text)
	}
	if _, err := fmt.Fprintf(p.out, "%s\n    %s\n  %s\n", divider(), symbol, text); err != nil {
		return err
	}
	return sleepCtx(ctx, d)
}

// ShowMissed renders the too-late message and holds it.
func (p *Presenter) ShowMissed(ctx context.Context, text string, d time.Duration) error {
	if _, err := fmt.Fprintf(p.out, "%s\n  %s\n", divider(), text); err != nil {
		return err
	}
	return sleepCtx(ctx, d)
}

// ShowFixation renders the inter-trial fixation cross and holds it.
func (p *Presenter) ShowFixation(ctx context.Context, d time.Duration) error {
	if _, err := fmt.Fprintf(p.out, "%s\n    +\n", divider()); err != nil {
		return err
	}
	return sleepCtx(ctx, d)
}

// ShowFinal renders the closing screen and holds it.
func (p *Presenter) ShowFinal(ctx context.Context, text string, d time.Duration) error {
	if _, err := fmt.Fprintf(p.out, "%s\n%s\n", divider(), text); err != nil {
		return err
	}
	return sleepCtx(ctx, d)
}

// Close ends the presentation.
func (p *Presenter) Close() error {
	_, err := fmt.Fprintln(p.out)
	return err
}

func divider() string {
	return strings.Repeat("-", 48)
}

// sleepCtx holds the current screen for d, ending early when the
// context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PromptParticipantID asks for an ID on out and reads answers from the
// line input until a non-empty one arrives.
func PromptParticipantID(ctx context.Context, in *LineInput, out io.Writer, prompt, invalid string) (core.ParticipantID, error) {
	for {
		if _, err := fmt.Fprint(out, prompt); err != nil {
			return "", err
		}
		line, err := in.AwaitLine(ctx)
		if err != nil {
			return "", err
		}
		pid, err := core.ParseParticipantID(line)
		if err != nil {
			if _, err := fmt.Fprintln(out, invalid); err != nil {
				return "", err
			}
			continue
		}
		return pid, nil
	}
}
