// Package archive reads and writes Ogawa archives.
//
// # Writing
//
// A Writer builds an object tree in memory. Samples are appended to scalar
// and array properties as they arrive; nothing but the file header touches
// the output until Close, which serializes the whole tree in one pass and
// freezes the file:
//
//	w, err := archive.Create("scene.abc", archive.WithApplication("sim"))
//	mesh, err := w.Root().AddChild("mesh", metadata.MetaData{})
//	p, err := mesh.Properties().AddArray("P", format.DataTypeVec3f)
//	err = p.AddSample(abc.AppendFloat32s(nil, 0, 0, 0, 1, 0, 0), nil)
//	err = w.Close()
//
// Identical sample payloads are written once per archive.
//
// # Reading
//
// A Reader validates the root group on open and returns lazy views for
// objects and properties. Views decode their headers when created and read
// samples on demand through a shared sample cache. A Reader and its views
// are safe for concurrent use.
package archive
