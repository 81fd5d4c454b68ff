package model

// Centralized icons for the UI components
// Using simple single-width characters for consistent terminal rendering
const (
	IconBinary  = "▸" // Top-level binary
	IconLibrary = " " // Plain shared object (no icon to reduce noise)
	IconSymlink = "→" // Right arrow (alias chain)
	IconFuzzy   = "≈" // Almost equal (fuzzy, resolution stopped early)
	IconMissing = "✗" // Thin X (dependency edge dropped)
)
