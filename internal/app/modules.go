package app

import (
	"github.com/specialistvlad/flowgridgo/internal/registry"
	"github.com/specialistvlad/flowgridgo/modules/arith"
	"github.com/specialistvlad/flowgridgo/modules/board"
	"github.com/specialistvlad/flowgridgo/modules/env_vars"
	"github.com/specialistvlad/flowgridgo/modules/event"
	"github.com/specialistvlad/flowgridgo/modules/flowctl"
	"github.com/specialistvlad/flowgridgo/modules/function"
	"github.com/specialistvlad/flowgridgo/modules/print"
	"github.com/specialistvlad/flowgridgo/modules/timer"
	"github.com/specialistvlad/flowgridgo/modules/value"
)

// coreModules is the definitive list of all node modules that are compiled
// into the flowgridgo binary.
var coreModules = []registry.Module{
	&function.Module{},
	&event.Module{},
	&flowctl.Module{},
	&arith.Module{},
	&value.Module{},
	&print.Module{},
	&env_vars.Module{},
	&board.Module{},
	&timer.Module{},
}
