package pipeline

import (
	"bytes"
	"context"
	stderrors "errors"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mealyetf/pkg/errors"
	"github.com/matzehuels/mealyetf/pkg/etf"
	mio "github.com/matzehuels/mealyetf/pkg/io"
	"github.com/matzehuels/mealyetf/pkg/mealy"
	"github.com/matzehuels/mealyetf/pkg/render/nodelink"
)

// producer generates artifacts for one machine. The alternating expansion
// is computed at most once per run.
type producer struct {
	machine *mio.Machine
	logger  *log.Logger

	lts   *etf.LTS
	stats *etf.Stats
}

func (p *producer) produce(ctx context.Context, format string) ([]byte, error) {
	data, err := p.render(ctx, format)
	if err != nil {
		return nil, classify(format, err)
	}
	return data, nil
}

func (p *producer) render(ctx context.Context, format string) ([]byte, error) {
	m := p.machine
	var buf bytes.Buffer

	switch format {
	case FormatETF, FormatETFBody:
		var st etf.Stats
		opts := []etf.Option{etf.WithLogger(p.logger), etf.WithStats(&st)}
		write := etf.WriteModel[string, string, string]
		if format == FormatETFBody {
			write = etf.WriteBody[string, string, string]
		}
		if err := write(&buf, m, m.Inputs(), opts...); err != nil {
			return nil, err
		}
		p.stats = &st
		return buf.Bytes(), nil

	case FormatDOT, FormatSVG:
		dot, err := nodelink.MachineDOT[string, string, string](m, m.Inputs())
		if err != nil {
			return nil, err
		}
		if format == FormatDOT {
			return []byte(dot), nil
		}
		return nodelink.RenderSVG(ctx, dot)

	case FormatLTSDOT, FormatLTSSVG:
		l, err := p.expansion()
		if err != nil {
			return nil, err
		}
		dot := nodelink.AlternatingDOT(l)
		if format == FormatLTSDOT {
			return []byte(dot), nil
		}
		return nodelink.RenderSVG(ctx, dot)

	case FormatJSON:
		if err := mio.WriteJSON(&buf, m); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format: %s", format)
}

func (p *producer) expansion() (*etf.LTS, error) {
	if p.lts != nil {
		return p.lts, nil
	}
	l, err := etf.Expand[string, string, string](p.machine, p.machine.Inputs())
	if err != nil {
		return nil, err
	}
	p.lts = l
	st := l.Stats()
	p.stats = &st
	return l, nil
}

func (p *producer) expansionStats() *etf.Stats { return p.stats }

// classify attaches an error code to failures that do not carry one.
func classify(format string, err error) error {
	if errors.GetCode(err) != "" {
		return err
	}
	var unknown *etf.UnknownStateError
	switch {
	case stderrors.Is(err, etf.ErrMissingInitialState):
		return errors.Wrap(errors.ErrCodeInvalidMachine, err, "render %s", format)
	case stderrors.As(err, &unknown), stderrors.Is(err, mealy.ErrUnknownState):
		return errors.Wrap(errors.ErrCodeInvalidMachine, err, "render %s", format)
	}
	return errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
}
