// Package abc defines the read-side contracts of an archive: archives,
// objects and the three property kinds.
//
// The interfaces are implemented by package archive. Schema interpreters
// should depend on these interfaces only and never on stream positions.
//
// Objects form a tree rooted at the top object "/". Every object owns one
// compound property holding its properties; a property is either a scalar
// (one value of a fixed DataType per sample), an array (a variable-length
// run of values per sample) or a compound (named sub-properties).
//
// Property kinds are discovered with capability accessors:
//
//	if arr, ok := prop.AsArray(); ok {
//	    raw, err := arr.Sample(0)
//	    positions, err := abc.Float32s(raw)
//	}
package abc
