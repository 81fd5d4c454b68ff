package model

// Version of the hostdeps tool. Bumped on release.
const Version = "0.3.1"
