// Package hclconfig decodes manager configuration files written in HCL.
package hclconfig

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// File is the decoded configuration. Absent attributes stay nil.
type File struct {
	Root               *string
	Folder             *string
	CreateDirs         *bool
	InheritOnCreation  *bool
	LoadOnInit         *bool
	SaveOnDel          *bool
	RemoveOnCompletion *bool
	Dirs               map[string]any
	ActivityEnabled    *bool
	ActivityChannel    *string
}

type hclFile struct {
	Root               *string        `hcl:"root,optional"`
	Folder             *string        `hcl:"folder,optional"`
	CreateDirs         *bool          `hcl:"create_dirs,optional"`
	InheritOnCreation  *bool          `hcl:"inherit_on_creation,optional"`
	LoadOnInit         *bool          `hcl:"load_on_init,optional"`
	SaveOnDel          *bool          `hcl:"save_on_del,optional"`
	RemoveOnCompletion *bool          `hcl:"remove_on_completion,optional"`
	Dirs               cty.Value      `hcl:"dirs,optional"`
	Activity           *activityBlock `hcl:"activity,block"`
}

type activityBlock struct {
	Enabled *bool   `hcl:"enabled,optional"`
	Channel *string `hcl:"channel,optional"`
}

// Parse decodes src; filename is only used in diagnostics.
func Parse(filename string, src []byte) (File, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return File{}, fmt.Errorf("hclconfig: parse %s: %w", filename, diags)
	}

	var body hclFile
	if diags := gohcl.DecodeBody(f.Body, nil, &body); diags.HasErrors() {
		return File{}, fmt.Errorf("hclconfig: decode %s: %w", filename, diags)
	}
	return body.file(filename)
}

func (b hclFile) file(filename string) (File, error) {
	out := File{
		Root:               b.Root,
		Folder:             b.Folder,
		CreateDirs:         b.CreateDirs,
		InheritOnCreation:  b.InheritOnCreation,
		LoadOnInit:         b.LoadOnInit,
		SaveOnDel:          b.SaveOnDel,
		RemoveOnCompletion: b.RemoveOnCompletion,
	}
	if b.Activity != nil {
		out.ActivityEnabled = b.Activity.Enabled
		out.ActivityChannel = b.Activity.Channel
	}
	if !b.Dirs.IsNull() {
		native, err := ctyToNative(b.Dirs)
		if err != nil {
			return File{}, fmt.Errorf("hclconfig: dirs in %s: %w", filename, err)
		}
		switch typed := native.(type) {
		case nil:
		case map[string]any:
			out.Dirs = typed
		case []any:
			out.Dirs = make(map[string]any, len(typed))
			for _, item := range typed {
				name, ok := item.(string)
				if !ok {
					return File{}, fmt.Errorf("hclconfig: dirs in %s: list item of type %T", filename, item)
				}
				out.Dirs[name] = nil
			}
		default:
			return File{}, fmt.Errorf("hclconfig: dirs in %s must be an object or a list, got %T", filename, native)
		}
	}
	return out, nil
}

// ctyToNative converts a cty value into strings, float64, bool, []any and
// map[string]any. Null and unknown values become nil.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("convert number: %w", err)
		}
		return f, nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, native)
		}
		return out, nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			key, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", key.AsString(), err)
			}
			out[key.AsString()] = native
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported type %s", ty.FriendlyName())
	}
}
