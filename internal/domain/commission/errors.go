package commission

import (
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/interval"
)

var (
	ErrTierNotFound             = errors.New("commission tier not found")
	ErrOverlappingTier          = fmt.Errorf("commission tier %w", interval.ErrOverlapping)
	ErrNoMatchingCommissionTier = errors.New("no commission tier covers the achieved amount")
	ErrRecordNotFound           = errors.New("commission record not found")
)
