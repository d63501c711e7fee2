package stepconstraint

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"go.viam.com/pushrecovery/spatialmath"
	"go.viam.com/pushrecovery/utils"
)

// RegionConfig is the JSON form of a Region. The hull is given in the frame described by
// X, Y, Z and Yaw. Yaw is in degrees.
type RegionConfig struct {
	ID   string       `json:"id"`
	X    float64      `json:"x"`
	Y    float64      `json:"y"`
	Z    float64      `json:"z"`
	Yaw  float64      `json:"yaw_deg"`
	Hull [][2]float64 `json:"hull"`
}

// Validate ensures all parts of the config are valid.
func (cfg *RegionConfig) Validate(path string) error {
	var err error
	if cfg.ID == "" {
		err = multierr.Append(err, errors.Errorf("%s.id: must not be empty", path))
	}
	if len(cfg.Hull) < 3 {
		err = multierr.Append(err, errors.Errorf("%s.hull: need at least 3 points, got %d", path, len(cfg.Hull)))
	}
	for i, pt := range cfg.Hull {
		if math.IsNaN(pt[0]) || math.IsNaN(pt[1]) || math.IsInf(pt[0], 0) || math.IsInf(pt[1], 0) {
			err = multierr.Append(err, errors.Errorf("%s.hull.%d: must be finite", path, i))
		}
	}
	return err
}

// Region builds the Region described by the config.
func (cfg *RegionConfig) Region() *Region {
	pose := spatialmath.NewPose(r3.Vector{X: cfg.X, Y: cfg.Y, Z: cfg.Z}, &spatialmath.EulerAngles{Yaw: utils.DegToRad(cfg.Yaw)})
	return NewRegion(cfg.ID, pose, spatialmath.NewConvexPolygonFromXY(cfg.Hull))
}

// FileConfig is the JSON document read by FileProvider. Keys of Depths are planning depths.
//
//	{
//	  "depths": {"0": [{"id": "stone-a", "x": 0.4, "hull": [[-0.1, -0.1], [0.1, -0.1], [0, 0.1]]}]},
//	  "default": []
//	}
type FileConfig struct {
	Depths  map[string][]RegionConfig `json:"depths"`
	Default []RegionConfig            `json:"default"`
}

// Validate ensures all parts of the config are valid.
func (cfg *FileConfig) Validate(path string) error {
	var err error
	for key, regions := range cfg.Depths {
		depthPath := fmt.Sprintf("%s.depths.%s", path, key)
		if depth, convErr := strconv.Atoi(key); convErr != nil || depth < 0 {
			err = multierr.Append(err, errors.Errorf("%s: depth must be a non-negative integer", depthPath))
		}
		for i := range regions {
			err = multierr.Append(err, regions[i].Validate(fmt.Sprintf("%s.%d", depthPath, i)))
		}
	}
	for i := range cfg.Default {
		err = multierr.Append(err, cfg.Default[i].Validate(fmt.Sprintf("%s.default.%d", path, i)))
	}
	return err
}

// Regions builds the regions per depth and the fallback regions. The config must be valid.
func (cfg *FileConfig) Regions() (map[int][]*Region, []*Region) {
	toRegion := func(rc RegionConfig, _ int) *Region {
		return rc.Region()
	}
	byDepth := make(map[int][]*Region, len(cfg.Depths))
	for key, regions := range cfg.Depths {
		depth, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		byDepth[depth] = lo.Map(regions, toRegion)
	}
	var fallback []*Region
	if cfg.Default != nil {
		fallback = lo.Map(cfg.Default, toRegion)
	}
	return byDepth, fallback
}

// ReadFileConfig reads and validates a FileConfig from path.
func ReadFileConfig(path string) (*FileConfig, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read step constraint file")
	}
	var cfg FileConfig
	if err := utils.UnmarshalJSON5(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "cannot parse step constraint file %q", path)
	}
	if err := cfg.Validate("step_constraints"); err != nil {
		return nil, err
	}
	return &cfg, nil
}
