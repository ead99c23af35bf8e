package interfaces

// ComponentMapper reports whether the rendering layer can draw a section
// identifier. Implementations live outside the content core; the resolver
// never consults them on the public read path.
type ComponentMapper interface {
	HasRenderer(identifier string) bool
}
