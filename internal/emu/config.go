package emu

// Config contains settings that affect how a Machine runs, independent of
// any particular cartridge.
type Config struct {
	Trace bool // log every CPU instruction via diag.Warnf
}
