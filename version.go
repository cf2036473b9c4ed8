package canopy

// Version is the library version, overridden at release time via
// -ldflags "-X github.com/aretw0/canopy.Version=...".
var Version = "0.1.0-dev"
