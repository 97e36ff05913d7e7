package espalier

// Version is the library version. Release builds override it with
// -ldflags "-X github.com/espalier-dev/espalier.Version=v1.2.3".
var Version = "0.1.0-dev"
