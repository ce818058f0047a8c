package app

import (
	"io"

	"github.com/vk/xodrun/internal/registry"
	"github.com/vk/xodrun/modules/core"
	"github.com/vk/xodrun/modules/debug"
)

// coreModules is the definitive list of all patch libraries compiled into the
// xodrun binary. Watch lines go to watchW.
func coreModules(watchW io.Writer) []registry.Module {
	return []registry.Module{
		&core.Module{},
		&debug.Module{Out: watchW},
	}
}
