package selector

// Env enumerates the selector adapters available to Resolve. It replaces
// ambient detection of a globally installed engine: callers state what the
// host provides.
type Env struct {
	// Engine names the installed third-party engine. Empty means none.
	Engine string
	// Engines maps engine names to their implementations.
	Engines map[string]Engine
	// Native is the host's query-all primitive, nil when the host has none.
	Native Selector
}

// DefaultEnv returns an Env with the native CSS adapter and the htmlquery
// engine registered but not installed.
func DefaultEnv() Env {
	return Env{
		Engines: map[string]Engine{EngineHTMLQuery: HTMLQuery},
		Native:  NativeSelector{},
	}
}

// EnvFor returns DefaultEnv with the named engine installed. The names
// "", "css" and "native" select the native adapter.
func EnvFor(name string) (Env, error) {
	env := DefaultEnv()
	switch name {
	case "", "css", "native":
		return env, nil
	}
	if _, ok := env.Engines[name]; !ok {
		return Env{}, &ErrUnknownEngine{Name: name}
	}
	env.Engine = name
	return env, nil
}

// Resolve picks the effective Selector. Precedence: explicit, then the
// installed third-party engine, then the native primitive. With none of
// these available it returns *ErrNoSelector.
func Resolve(explicit Selector, env Env) (Selector, error) {
	if explicit != nil {
		return explicit, nil
	}
	if env.Engine != "" {
		if engine := env.Engines[env.Engine]; engine != nil {
			return ThirdParty(env.Engine, engine), nil
		}
	}
	if env.Native != nil {
		return env.Native, nil
	}
	return nil, &ErrNoSelector{Engine: env.Engine}
}
