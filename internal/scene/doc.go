// Package scene turns accepted states into renderable 2-D geometry.
//
// A [Frame] is an ordered list of shapes in world coordinates (static
// scenery first, then moving parts). A [Mapper] builds one Frame per
// trajectory sample and describes the viewport through its [Layout].
// Mappers are pure: the same sample always yields the same Frame.
package scene
