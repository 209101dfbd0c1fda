// Package tui implements the interactive terminal dashboard.
//
// The dashboard shows desired and device-confirmed state side by side
// and maps key presses to intents on the reconcile engine. It never
// talks to the device directly; all traffic goes through the engine's
// loop, so the dashboard stays responsive even when the device is
// slow or unreachable. Fields whose desired and confirmed values
// differ are highlighted until the loop converges them.
package tui
