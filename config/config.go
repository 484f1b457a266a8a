// Package config supplies integrator and dispatcher tuning defaults via
// viper, generalizing the teacher's _smdconfig (config.go) — a lazily
// loaded, package-level TOML-backed settings struct — from orbital-mechanics
// ephemeris/export settings to ray-tracing integrator tuning. Unlike the
// teacher, which panics when its config file is missing, this package
// treats an absent file as "use viper's built-in defaults" since scenery
// XML input (not a config file) is this system's primary tuning surface;
// the config layer only supplies the scenery-independent fallbacks.
package config

import (
	"github.com/spf13/viper"

	"github.com/relgr/raytrace/photon"
)

// Defaults holds the package-wide fallback tuning, read once and cached
// exactly as the teacher's smdConfig caches _smdconfig behind cfgLoaded.
type Defaults struct {
	Tuning   photon.Tuning
	NThreads int
}

var (
	loaded   bool
	defaults Defaults
)

func setViperDefaults(v *viper.Viper) {
	d := photon.DefaultTuning()
	v.SetDefault("integrator.kind", d.Kind.String())
	v.SetDefault("integrator.delta", d.Delta)
	v.SetDefault("integrator.adaptive", d.Adaptive)
	v.SetDefault("integrator.abstol", d.AbsTol)
	v.SetDefault("integrator.reltol", d.RelTol)
	v.SetDefault("integrator.deltamax", d.DeltaMax)
	v.SetDefault("integrator.deltamaxoverr", d.DeltaMaxOverR)
	v.SetDefault("integrator.deltamin", d.DeltaMin)
	v.SetDefault("integrator.maxiter", d.Maxiter)
	v.SetDefault("integrator.minimumtime", d.MinimumTime)
	v.SetDefault("integrator.primaryonly", d.PrimaryOnly)
	v.SetDefault("dispatcher.nthreads", 1)
}

// Load reads conf.toml from confPath (if present) over viper's built-in
// defaults, caching the result for subsequent calls. An empty confPath, or
// one with no readable conf.toml, yields the built-in defaults only — this
// package never panics on a missing file (spec.md's ambient config layer is
// a fallback, not a required input, unlike the teacher's SMD_CONFIG).
func Load(confPath string) Defaults {
	if loaded {
		return defaults
	}
	v := viper.New()
	setViperDefaults(v)
	if confPath != "" {
		v.SetConfigName("conf")
		v.AddConfigPath(confPath)
		_ = v.ReadInConfig() // missing/malformed file: fall through to defaults
	}

	kind, ok := photon.ParseKind(v.GetString("integrator.kind"))
	if !ok {
		kind = photon.Legacy
	}
	defaults = Defaults{
		Tuning: photon.Tuning{
			Kind:          kind,
			Delta:         v.GetFloat64("integrator.delta"),
			Adaptive:      v.GetBool("integrator.adaptive"),
			AbsTol:        v.GetFloat64("integrator.abstol"),
			RelTol:        v.GetFloat64("integrator.reltol"),
			DeltaMax:      v.GetFloat64("integrator.deltamax"),
			DeltaMaxOverR: v.GetFloat64("integrator.deltamaxoverr"),
			DeltaMin:      v.GetFloat64("integrator.deltamin"),
			Maxiter:       v.GetInt("integrator.maxiter"),
			MinimumTime:   v.GetFloat64("integrator.minimumtime"),
			PrimaryOnly:   v.GetBool("integrator.primaryonly"),
		},
		NThreads: v.GetInt("dispatcher.nthreads"),
	}
	loaded = true
	return defaults
}
