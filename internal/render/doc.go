// Package render turns scene frames into files: animated GIFs rasterized
// with gonum's vgimg backend and single-frame SVG stills through vgsvg.
package render
