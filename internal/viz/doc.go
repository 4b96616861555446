// Package viz holds the terminal side of kinefig: lipgloss styles for
// command output, a Braille canvas that previews a scene frame in the
// terminal, and a Bubble Tea view that tracks GIF rasterization.
package viz
