package ocr

import (
	"context"

	"github.com/billfoldhq/billfold-backend/pkg/config"
	"github.com/billfoldhq/billfold-backend/pkg/enums"
	pkgerrors "github.com/billfoldhq/billfold-backend/pkg/errors"
	"github.com/billfoldhq/billfold-backend/pkg/logger"
)

// Chain tries each configured engine once, in order, and returns the first
// success together with the engine that produced it. There is no retry: a
// failed engine simply hands off to the next one.
type Chain struct {
	engines []Engine
	logg    *logger.Logger
}

// NewChain assembles the engine order: primary LLM endpoint, secondary OCR
// API, then the simulated fallback. Unconfigured engines are skipped.
func NewChain(cfg config.OCRConfig, logg *logger.Logger) *Chain {
	var engines []Engine
	if primary := NewPrimaryEngine(cfg); primary != nil {
		engines = append(engines, primary)
	}
	if secondary := NewSecondaryEngine(cfg); secondary != nil {
		engines = append(engines, secondary)
	}
	engines = append(engines, NewSimulatedEngine())

	return &Chain{engines: engines, logg: logg}
}

// NewChainWithEngines is the test seam for assembling an explicit order.
func NewChainWithEngines(logg *logger.Logger, engines ...Engine) *Chain {
	return &Chain{engines: engines, logg: logg}
}

// Extract runs the chain. The returned engine name records which engine
// produced the result so invoices can carry their provenance.
func (c *Chain) Extract(ctx context.Context, req ExtractionRequest) (*ExtractionResult, enums.OCREngine, error) {
	if c == nil || len(c.engines) == 0 {
		return nil, "", pkgerrors.New(pkgerrors.CodeDependency, "no ocr engines configured")
	}

	var lastErr error
	for _, engine := range c.engines {
		result, err := engine.Extract(ctx, req)
		if err != nil {
			lastErr = err
			if c.logg != nil {
				c.logg.Warn(c.logg.WithField(ctx, "engine", string(engine.Name())), "ocr engine failed, trying next")
			}
			continue
		}
		return result, engine.Name(), nil
	}

	return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, lastErr, "all ocr engines failed")
}
