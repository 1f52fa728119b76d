package wikiboot

// Client assembles the bootstrap components around one shared Runtime.
type Client struct {
	Runtime      *Runtime
	Loader       *ScriptLoader
	Engine       *JSEngine
	Bootstrapper *Bootstrapper

	cfg bootConfig
}

// New builds a Client. Options apply to every component.
func New(opts ...Option) *Client {
	cfg := applyOptions(opts)
	var runtimeOpts []RuntimeOption
	if cfg.programCache != nil {
		runtimeOpts = append(runtimeOpts, RuntimeWithProgramCache(cfg.programCache))
	}
	rt := NewRuntime(runtimeOpts...)
	loader := newScriptLoader(rt, cfg)
	engine := NewJSEngine(rt, cfg.config.EngineSymbol)
	return &Client{
		Runtime:      rt,
		Loader:       loader,
		Engine:       engine,
		Bootstrapper: newBootstrapper(loader, engine, cfg),
		cfg:          cfg,
	}
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg.config
}

// Services returns a registry bound to the client's engine and bootstrapper.
func Services[O any](c *Client) *Registry[O] {
	return newRegistry[O](c.Bootstrapper, c.Engine, c.cfg)
}
