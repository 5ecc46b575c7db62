package plugin

import (
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-drive/dsp/buffer"
	"github.com/cwbudde/algo-drive/dsp/core"
	"github.com/cwbudde/algo-drive/dsp/effects"
	"github.com/cwbudde/algo-drive/dsp/param"
	"github.com/cwbudde/algo-drive/plugin/state"
)

// Processor is the host-facing drive effect.
type Processor struct {
	store  *param.Store
	chain  *effects.Distortion
	logger *logrus.Logger

	prepared atomic.Bool
	cfg      core.ProcessorConfig
}

// New creates a processor with default parameter values.
func New(opts ...Option) (*Processor, error) {
	cfg := defaultConfig()

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	chain, err := effects.NewDistortion(effects.WithDistortionApproxMode(cfg.approxMode))
	if err != nil {
		return nil, err
	}

	p := &Processor{
		store:  param.NewStore(),
		chain:  chain,
		logger: cfg.logger,
	}

	p.logger.WithFields(logrus.Fields{
		"function":    "plugin.New",
		"approx_mode": cfg.approxMode,
	}).Debug("Processor created")

	return p, nil
}

// Info returns the static processor description.
func (p *Processor) Info() Info { return info }

// Parameters returns the parameter declaration for host binding.
func (p *Processor) Parameters() param.Definitions { return p.store.Definitions() }

// Store exposes the parameter store, e.g. for subscribing UI listeners.
func (p *Processor) Store() *param.Store { return p.store }

// ParameterChanged is the host change callback. value is in host units.
func (p *Processor) ParameterChanged(id param.ID, value float64) {
	p.store.OnParameterChanged(id, value)
}

// ParameterText formats the current value of id for display.
func (p *Processor) ParameterText(id param.ID) (string, error) {
	def, ok := p.store.Definitions().Lookup(id)
	if !ok {
		return "", fmt.Errorf("%w: %q", param.ErrUnknownParameter, id)
	}

	v, _ := p.store.Value(id)

	return def.Format(v), nil
}

// SetParameterText parses display text and applies it to id.
func (p *Processor) SetParameterText(id param.ID, text string) error {
	def, ok := p.store.Definitions().Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %q", param.ErrUnknownParameter, id)
	}

	v, err := def.Parse(text)
	if err != nil {
		return err
	}

	p.store.OnParameterChanged(id, v)

	return nil
}

// IsLayoutSupported reports whether the processor can run with l.
func (p *Processor) IsLayoutSupported(l Layout) bool {
	ok := IsLayoutSupported(l)

	p.logger.WithFields(logrus.Fields{
		"function":  "Processor.IsLayoutSupported",
		"input":     l.Input,
		"output":    l.Output,
		"supported": ok,
	}).Debug("Layout negotiation")

	return ok
}

// Prepare validates cfg and readies the processor for playback.
func (p *Processor) Prepare(cfg core.ProcessorConfig) error {
	if err := cfg.Validate(); err != nil {
		p.logger.WithFields(logrus.Fields{
			"function": "Processor.Prepare",
			"error":    err.Error(),
		}).Error("Invalid processor configuration")

		return err
	}

	p.cfg = cfg
	p.prepared.Store(true)

	p.logger.WithFields(logrus.Fields{
		"function":    "Processor.Prepare",
		"sample_rate": cfg.SampleRate,
		"block_size":  cfg.BlockSize,
		"channels":    cfg.Channels,
	}).Info("Processor prepared")

	return nil
}

// Release is called when playback stops. The chain holds no resources, so it
// only clears the prepared flag.
func (p *Processor) Release() {
	p.prepared.Store(false)

	p.logger.WithFields(logrus.Fields{
		"function": "Processor.Release",
	}).Info("Processor released")
}

// Prepared reports whether Prepare succeeded and Release has not been called.
func (p *Processor) Prepared() bool { return p.prepared.Load() }

// Config returns the configuration accepted by the last Prepare.
func (p *Processor) Config() core.ProcessorConfig { return p.cfg }

// Process runs one audio block in place. Parameters are read once, so a
// change arriving mid-block takes effect on the next block. Events are
// ignored. Malformed channels are silenced.
func (p *Processor) Process(block buffer.Block, _ []Event) {
	p.chain.ProcessBlock(block, p.store.Current())
}

// State serialises the four parameter values.
func (p *Processor) State() ([]byte, error) {
	data, err := state.Marshal(p.store.Current())
	if err != nil {
		p.logger.WithFields(logrus.Fields{
			"function": "Processor.State",
			"error":    err.Error(),
		}).Error("State save failed")

		return nil, err
	}

	p.logger.WithFields(logrus.Fields{
		"function": "Processor.State",
		"bytes":    len(data),
	}).Debug("State saved")

	return data, nil
}

// SetState restores parameter values from a blob produced by State. On error
// the current values are left unchanged.
func (p *Processor) SetState(data []byte) error {
	snap, err := state.Unmarshal(data, p.store.Current())
	if err != nil {
		p.logger.WithFields(logrus.Fields{
			"function": "Processor.SetState",
			"bytes":    len(data),
			"error":    err.Error(),
		}).Warn("State load rejected")

		return fmt.Errorf("restore state: %w", err)
	}

	p.store.Restore(snap)

	p.logger.WithFields(logrus.Fields{
		"function":  "Processor.SetState",
		"input_db":  snap.InputDB,
		"drive_db":  snap.DriveDB,
		"mix":       snap.Mix,
		"output_db": snap.OutputDB,
	}).Info("State restored")

	return nil
}
