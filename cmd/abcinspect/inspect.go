package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/arloliu/alembic/abc"
	"github.com/arloliu/alembic/archive"
)

type inspector struct {
	out io.Writer
	cfg Config
	err error
}

func newInspector(out io.Writer, cfg Config) *inspector {
	return &inspector{out: out, cfg: cfg}
}

func (in *inspector) printf(format string, args ...any) {
	if in.err != nil {
		return
	}
	_, in.err = fmt.Fprintf(in.out, format, args...)
}

// Archive prints the archive summary followed by its object tree.
func (in *inspector) Archive(r *archive.Reader) error {
	in.printf("archive %s (%s)\n", r.Name(), humanize.IBytes(r.Size()))
	in.printf("  version: %s\n", r.AlembicVersion())
	if app := r.Application(); app != "" {
		in.printf("  application: %s\n", app)
	}
	if date := r.DateWritten(); date != "" {
		in.printf("  written: %s\n", date)
	}
	if desc := r.Description(); desc != "" {
		in.printf("  description: %s\n", desc)
	}
	if fps, ok := r.FPS(); ok {
		in.printf("  fps: %g\n", fps)
	}
	in.printf("  compression: %s\n", r.Compression())

	for i := range r.NumTimeSamplings() {
		ts, err := r.TimeSampling(i)
		if err != nil {
			return err
		}
		maxSamples, _ := r.MaxSamples(i)
		in.printf("  time sampling %d: %s, %d samples\n", i, ts, maxSamples)
	}

	root, err := r.Root()
	if err != nil {
		return err
	}
	if err := in.object(root, 0); err != nil {
		return err
	}

	return in.err
}

func (in *inspector) object(obj abc.ObjectReader, depth int) error {
	indent := strings.Repeat("  ", depth)
	in.printf("%s%s", indent, obj.FullName())
	if schema := obj.MetaData().Schema(); schema != "" {
		in.printf(" [%s]", schema)
	}
	in.printf("\n")
	if in.cfg.Hashes {
		props, children := obj.PropertiesHash(), obj.ChildrenHash()
		in.printf("%s  hashes: properties %s children %s\n", indent, hex.EncodeToString(props[:]), hex.EncodeToString(children[:]))
	}

	if in.cfg.Properties {
		props, err := obj.Properties()
		if err != nil {
			return err
		}
		if err := in.compound(props, depth+1); err != nil {
			return err
		}
	}

	if in.cfg.MaxDepth > 0 && depth+1 >= in.cfg.MaxDepth {
		return nil
	}
	for i := range obj.NumChildren() {
		child, err := obj.Child(i)
		if err != nil {
			return err
		}
		if err := in.object(child, depth+1); err != nil {
			return err
		}
	}

	return nil
}

func (in *inspector) compound(c abc.CompoundPropertyReader, depth int) error {
	indent := strings.Repeat("  ", depth)
	for i := range c.NumProperties() {
		p, err := c.Property(i)
		if err != nil {
			return err
		}

		if sub, ok := p.AsCompound(); ok {
			in.printf("%s.%s compound (%d)\n", indent, p.Name(), sub.NumProperties())
			if err := in.compound(sub, depth+1); err != nil {
				return err
			}

			continue
		}

		h := p.Header()
		kind := "scalar"
		if h.IsArray() {
			kind = "array"
		}
		in.printf("%s.%s %s<%s> %d samples, ts %d", indent, h.Name, kind, h.DataType, h.NumSamples, h.TimeSamplingIndex)
		if h.IsConstant() {
			in.printf(", constant")
		}
		in.printf("\n")

		if err := in.samples(p, indent); err != nil {
			return err
		}
	}

	return nil
}

func (in *inspector) samples(p abc.PropertyReader, indent string) error {
	if in.cfg.Samples == 0 {
		return nil
	}

	var sampled abc.SampledPropertyReader
	var arr abc.ArrayPropertyReader
	if s, ok := p.AsScalar(); ok {
		sampled = s
	} else if a, ok := p.AsArray(); ok {
		sampled, arr = a, a
	}

	n := min(sampled.NumSamples(), in.cfg.Samples)
	for i := range n {
		raw, err := sampled.Sample(i)
		if err != nil {
			return err
		}
		in.printf("%s  [%d] %s", indent, i, humanize.IBytes(uint64(len(raw))))
		if arr != nil {
			dims, err := arr.Dimensions(i)
			if err != nil {
				return err
			}
			in.printf(" dims %v", dims)
		}
		in.printf("\n")
	}

	return nil
}
