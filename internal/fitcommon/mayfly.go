package fitcommon

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/mayfly"
)

// Variants lists the accepted Mayfly variant names.
var Variants = []string{"ma", "desma", "olce", "eobbma", "gsasma", "mpma", "aoblmoa"}

// NewMayflyConfig builds a Mayfly config searching the unit cube of dims
// dimensions.
func NewMayflyConfig(variant string, pop int, dims int, iters int) (*mayfly.Config, error) {
	var cfg *mayfly.Config
	switch strings.ToLower(strings.TrimSpace(variant)) {
	case "ma":
		cfg = mayfly.NewDefaultConfig()
	case "desma":
		cfg = mayfly.NewDESMAConfig()
	case "olce":
		cfg = mayfly.NewOLCEConfig()
	case "eobbma":
		cfg = mayfly.NewEOBBMAConfig()
	case "gsasma":
		cfg = mayfly.NewGSASMAConfig()
	case "mpma":
		cfg = mayfly.NewMPMAConfig()
	case "aoblmoa":
		cfg = mayfly.NewAOBLMOAConfig()
	default:
		return nil, fmt.Errorf("unsupported mayfly variant %q (want one of %s)", variant, strings.Join(Variants, ", "))
	}
	if dims < 1 {
		return nil, fmt.Errorf("dims must be >= 1")
	}
	pop = max(pop, 2)
	cfg.ProblemSize = dims
	cfg.LowerBound = 0.0
	cfg.UpperBound = 1.0
	cfg.MaxIterations = max(iters, 1)
	cfg.NPop = pop
	cfg.NPopF = pop
	cfg.NC = 2 * pop
	cfg.NM = max(1, int(math.Round(0.05*float64(pop))))
	return cfg, nil
}

// RunMayfly runs the optimizer, turning a panic inside it into an error.
func RunMayfly(cfg *mayfly.Config) (_ *mayfly.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mayfly panic: %v", r)
		}
	}()
	return mayfly.Optimize(cfg)
}
