package rule

import (
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/interval"
)

var (
	ErrInvalidRuleParameter = errors.New("invalid rule parameter")
	ErrMissingRuleParameter = errors.New("rule parameter not set")
	ErrUnknownRuleParameter = errors.New("unknown rule parameter key")
	ErrInvalidCapBase       = errors.New("invalid insurance capping base")
	ErrOverlappingTaxBand   = fmt.Errorf("tax band %w", interval.ErrOverlapping)
	ErrTaxBandsNotUnbounded = errors.New("last tax band must have no upper bound")
)
