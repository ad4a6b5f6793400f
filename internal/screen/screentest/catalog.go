package screentest

import (
	"bytes"
	"image"
	"image/png"
	"testing/fstest"
)

// TemplateWidth and TemplateHeight are the size of every image Catalog
// creates.
const (
	TemplateWidth  = 30
	TemplateHeight = 20
)

// Catalog returns an in-memory pattern catalog holding a blank PNG for each
// name under common/.
func Catalog(names ...string) fstest.MapFS {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, TemplateWidth, TemplateHeight))); err != nil {
		panic(err)
	}
	fsys := fstest.MapFS{}
	for _, name := range names {
		fsys["common/"+name] = &fstest.MapFile{Data: buf.Bytes()}
	}
	return fsys
}
