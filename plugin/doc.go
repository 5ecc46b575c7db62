// Package plugin adapts the drive core to a host: it publishes the parameter
// declaration, receives change callbacks, negotiates the bus layout, runs the
// signal chain once per audio block and persists state.
//
// Only the control-side methods log. Process never logs, locks or allocates.
package plugin
