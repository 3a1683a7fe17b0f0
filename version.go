package shift

// Version is the library version, consumed by the CLI.
const Version = "0.1.0"
