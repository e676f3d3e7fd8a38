package config

import "github.com/opd-ai/go-roadball/pkg/physics"

// upward is the normal for flat floors whose line direction is arbitrary.
func upward() *physics.Vector2D {
	n := physics.Vec(0, -1)
	return &n
}

func pts(xy ...float64) []physics.Vector2D {
	points := make([]physics.Vector2D, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		points = append(points, physics.Vec(xy[i], xy[i+1]))
	}
	return points
}

// DefaultLevels returns the built-in levels used when no level file is
// given.
func DefaultLevels() []LevelConfig {
	camera := CameraConfig{Target: 1, Offset: physics.Vec(400, 300)}
	return []LevelConfig{
		{
			Name:     "warm-up",
			SeaLevel: 800,
			Camera:   camera,
			Layers: []LayerConfig{{
				Name: "main",
				Objects: []ObjectConfig{
					{ID: 1, Kind: "car", Position: physics.Vec(0, 270)},
					{ID: 2, Kind: "ball", Position: physics.Vec(300, 250)},
					{ID: 3, Kind: "ground", Points: pts(-400, 300, 1600, 300), Normal: upward()},
					{ID: 4, Kind: "custom", Points: pts(-400, 300, -400, -200)},
					{ID: 5, Kind: "goal", Points: pts(1200, 300, 1200, 200, 1260, 200, 1260, 300), Closed: true},
				},
			}},
		},
		{
			Name:     "gap",
			SeaLevel: 800,
			Camera:   camera,
			Layers: []LayerConfig{{
				Name: "main",
				Objects: []ObjectConfig{
					{ID: 1, Kind: "car", Position: physics.Vec(0, 270)},
					{ID: 2, Kind: "ball", Position: physics.Vec(200, 250)},
					{ID: 3, Kind: "ground", Points: pts(-400, 300, 600, 300), Normal: upward()},
					{ID: 4, Kind: "custom", Points: pts(450, 300, 600, 260, 600, 300), Closed: true},
					{ID: 5, Kind: "ground", Points: pts(800, 300, 1800, 300), Normal: upward()},
					{ID: 6, Kind: "obstacle", Points: pts(600, 600, 800, 600)},
					{ID: 7, Kind: "goal", Points: pts(1600, 300, 1600, 200, 1660, 200, 1660, 300), Closed: true},
				},
			}},
		},
	}
}
