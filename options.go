package markwidget

// RenderOptions holds options for Render.
type RenderOptions struct {
	Normalize bool
	Config    *RenderConfig

	// 非 nil 时覆盖 Config 中的对应字段
	Highlight *HighlightQuery
	Direction *TextDirection
}

// Option is a function that configures RenderOptions.
type Option func(*RenderOptions)

// WithNormalize sets whether to normalize math delimiters before parsing.
func WithNormalize(enable bool) Option {
	return func(opts *RenderOptions) {
		opts.Normalize = enable
	}
}

// WithConfig sets a custom RenderConfig.
func WithConfig(config *RenderConfig) Option {
	return func(opts *RenderOptions) {
		opts.Config = config
	}
}

// WithHighlight sets the highlight query applied after parsing.
func WithHighlight(q HighlightQuery) Option {
	return func(opts *RenderOptions) {
		opts.Highlight = &q
	}
}

// WithTextDirection sets the writing direction passed to the presentation layer.
func WithTextDirection(d TextDirection) Option {
	return func(opts *RenderOptions) {
		opts.Direction = &d
	}
}

// defaultRenderOptions returns the default render options.
func defaultRenderOptions() *RenderOptions {
	return &RenderOptions{
		Normalize: true,
		Config:    DefaultConfig(),
	}
}

// applyOptions applies the given options to the default options.
func applyOptions(opts ...Option) *RenderOptions {
	options := defaultRenderOptions()
	for _, opt := range opts {
		opt(options)
	}
	if options.Config == nil {
		options.Config = DefaultConfig()
	}
	return options
}

func (o *RenderOptions) query() HighlightQuery {
	if o.Highlight != nil {
		return *o.Highlight
	}
	return o.Config.Highlight
}

func (o *RenderOptions) direction() TextDirection {
	if o.Direction != nil {
		return *o.Direction
	}
	return o.Config.Direction
}
