package taxengine

import (
	"go.uber.org/fx"
)

// Module provides the tax engine to the fx graph.
var Module = fx.Module("taxengine",
	fx.Provide(New),
)
