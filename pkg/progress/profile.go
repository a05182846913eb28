package progress

import "fmt"

// Profile names bind a Config to an entry point.
const (
	ProfileScenario   = "scenario"
	ProfileChallenge  = "challenge"
	ProfileReflection = "reflection"
)

// Engines resolves an Engine per profile name.
type Engines map[string]*Engine

func NewEngines(profiles map[string]Config, opts ...Option) Engines {
	out := make(Engines, len(profiles))
	for name, cfg := range profiles {
		out[name] = NewEngine(cfg, opts...)
	}
	return out
}

func (e Engines) Get(profile string) (*Engine, error) {
	engine, ok := e[profile]
	if !ok {
		return nil, fmt.Errorf("progress profile %q not configured", profile)
	}
	return engine, nil
}
