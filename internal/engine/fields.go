package engine

import (
	"context"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/couchcryptid/hazard-risk-service/internal/domain"
)

// Fields are gridded environmental inputs for the flood layer, each
// resolution × resolution and aligned with the heatmap axes.
type Fields struct {
	Rainfall     domain.Grid
	SoilMoisture domain.Grid
	Elevation    domain.Grid
}

func (f Fields) validate(resolution int) error {
	for name, g := range map[string]domain.Grid{
		"rainfall":      f.Rainfall,
		"soil_moisture": f.SoilMoisture,
		"elevation":     f.Elevation,
	} {
		rows, cols := g.Shape()
		if rows != resolution || cols != resolution {
			return fmt.Errorf("%s field is %dx%d, want %dx%d", name, rows, cols, resolution, resolution)
		}
	}
	return nil
}

// FieldSource supplies environmental fields for a region. Implementations
// that reach external data services should bound their own latency.
type FieldSource interface {
	Fields(ctx context.Context, r Region, resolution int) (Fields, error)
}

// SyntheticFields draws plausible fields when no observational source is
// wired in: rainfall ~ Gamma(2, scale 25) mm, soil moisture ~ U(0, 1) and
// elevation ~ U(100, 2000) m.
type SyntheticFields struct {
	Seed uint64
}

// Fields implements FieldSource. Each call with the same non-zero seed
// returns the same fields.
func (s SyntheticFields) Fields(ctx context.Context, _ Region, resolution int) (Fields, error) {
	if err := ctx.Err(); err != nil {
		return Fields{}, err
	}
	seed := s.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	src := rand.NewPCG(seed, ^seed)
	rain := distuv.Gamma{Alpha: 2, Beta: 1.0 / 25, Src: src}
	soil := distuv.Uniform{Min: 0, Max: 1, Src: src}
	elev := distuv.Uniform{Min: 100, Max: 2000, Src: src}

	f := Fields{
		Rainfall:     domain.NewGrid(resolution, resolution),
		SoilMoisture: domain.NewGrid(resolution, resolution),
		Elevation:    domain.NewGrid(resolution, resolution),
	}
	for i := range resolution {
		for j := range resolution {
			f.Rainfall[i][j] = rain.Rand()
			f.SoilMoisture[i][j] = soil.Rand()
			f.Elevation[i][j] = elev.Rand()
		}
	}
	return f, nil
}
